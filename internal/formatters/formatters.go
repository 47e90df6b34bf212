package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumepdf/internal/render"
	"resumepdf/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Plan", &PlanTextFormatter{})
	registry.RegisterFormatter("markdown", "Plan", &PlanMarkdownFormatter{})
	registry.RegisterFormatter("text", "ValidationReport", &ValidationTextFormatter{})
	registry.RegisterFormatter("markdown", "ValidationReport", &ValidationMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *render.Plan, render.Plan:
		return "Plan"
	case types.ValidationReport, *types.ValidationReport:
		return "ValidationReport"
	default:
		return "any"
	}
}

func asPlan(data any) (*render.Plan, error) {
	switch p := data.(type) {
	case *render.Plan:
		return p, nil
	case render.Plan:
		return &p, nil
	default:
		return nil, fmt.Errorf("expected Plan, got %T", data)
	}
}

func asReport(data any) (types.ValidationReport, error) {
	switch r := data.(type) {
	case types.ValidationReport:
		return r, nil
	case *types.ValidationReport:
		return *r, nil
	default:
		return types.ValidationReport{}, fmt.Errorf("expected ValidationReport, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// PlanTextFormatter prints a plan as the plain text a reader would see,
// one line per paragraph or row.
type PlanTextFormatter struct{}

func (ptf *PlanTextFormatter) Format(data any) (string, error) {
	plan, err := asPlan(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== RENDER PLAN (%s, %s) ===\n\n", plan.Theme.Name, plan.Language))
	for _, b := range plan.Blocks {
		switch b.Kind {
		case render.BlockRule:
			output.WriteString(strings.Repeat("-", 40))
			output.WriteString("\n")
		case render.BlockSpacer:
			output.WriteString("\n")
		default:
			line, _ := b.Line()
			if b.Style == render.StyleSection {
				line = strings.ToUpper(line)
			}
			output.WriteString(line)
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (ptf *PlanTextFormatter) SupportedType() string {
	return "Plan"
}

// PlanMarkdownFormatter prints a plan as a markdown document.
type PlanMarkdownFormatter struct{}

func (pmf *PlanMarkdownFormatter) Format(data any) (string, error) {
	plan, err := asPlan(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for _, b := range plan.Blocks {
		switch b.Kind {
		case render.BlockRule:
			output.WriteString("---\n\n")
		case render.BlockSpacer:
			continue
		case render.BlockRow:
			output.WriteString(markdownSpans(b.Spans))
			if b.Right != "" {
				output.WriteString(" *(" + b.Right + ")*")
			}
			output.WriteString("\n\n")
		default:
			switch b.Style {
			case render.StylePersonName:
				output.WriteString("# " + b.Text() + "\n\n")
			case render.StyleSection:
				output.WriteString("## " + b.Text() + "\n\n")
			case render.StyleBullet:
				text := markdownSpans(b.Spans)
				text = strings.TrimPrefix(text, "• ")
				output.WriteString("- " + text + "\n\n")
			default:
				output.WriteString(markdownSpans(b.Spans) + "\n\n")
			}
		}
	}

	return output.String(), nil
}

func (pmf *PlanMarkdownFormatter) SupportedType() string {
	return "Plan"
}

func markdownSpans(spans []render.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Bold && strings.TrimSpace(s.Text) != "" {
			sb.WriteString("**" + s.Text + "**")
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ValidationTextFormatter handles text formatting for validation reports
type ValidationTextFormatter struct{}

func (vtf *ValidationTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== DOCUMENT VALIDATION ===\n\n")
	if report.Valid {
		output.WriteString("Document is valid.\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("Found %d problem(s):\n", len(report.Errors)))
	for i, e := range report.Errors {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, e))
	}
	return output.String(), nil
}

func (vtf *ValidationTextFormatter) SupportedType() string {
	return "ValidationReport"
}

// ValidationMarkdownFormatter handles markdown formatting for validation reports
type ValidationMarkdownFormatter struct{}

func (vmf *ValidationMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Document Validation\n\n")
	if report.Valid {
		output.WriteString("**Valid.**\n")
		return output.String(), nil
	}

	output.WriteString("## Problems\n\n")
	for _, e := range report.Errors {
		output.WriteString(fmt.Sprintf("- %s\n", e))
	}
	return output.String(), nil
}

func (vmf *ValidationMarkdownFormatter) SupportedType() string {
	return "ValidationReport"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
