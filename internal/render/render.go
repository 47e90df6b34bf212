// Package render turns a resume document into a styled, paginated PDF.
//
// Rendering happens in two steps. BuildPlan maps the document onto an
// ordered list of layout blocks for a theme and label language, and
// PDFRenderer paginates that plan with fpdf. Renderer ties both together
// and adds tracing.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"resumepdf/internal/errors"
	"resumepdf/internal/types"
	"resumepdf/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "resumepdf/render"

// Options configures a Renderer.
type Options struct {
	// DefaultStyle applies when neither the caller nor the document names one.
	DefaultStyle string
	PDF          PDFOptions
}

// Result describes one generated document.
type Result struct {
	Plan     *Plan
	Style    string
	Fallback bool
	Stats    RenderStats
}

// Renderer runs the plan and pagination steps. It holds no per-document
// state and may be shared between goroutines.
type Renderer struct {
	backend      *PDFRenderer
	defaultStyle string
	logger       *errors.Logger
	tracer       trace.Tracer
}

// NewRenderer creates a Renderer. It fails when the configured font cannot be read.
func NewRenderer(opts Options, logger *errors.Logger) (*Renderer, error) {
	backend, err := NewPDFRenderer(opts.PDF)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = errors.Discard()
	}
	return &Renderer{
		backend:      backend,
		defaultStyle: opts.DefaultStyle,
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// Plan resolves the style and builds the render plan. An explicit style
// wins over the document's own style, which wins over the default.
func (r *Renderer) Plan(ctx context.Context, doc *types.ResumeDocument, style string) (*Plan, string, bool) {
	_, span := r.tracer.Start(ctx, "render.plan")
	defer span.End()

	name := SelectStyle(style, doc.Style, r.defaultStyle)
	_, known := ResolveTheme(name)
	if !known {
		r.logger.Warn("Unknown style, using default", "style", name, "default", DefaultStyle)
	}

	plan := BuildPlan(doc, name)
	span.SetAttributes(
		attribute.String("render.style", plan.Theme.Name),
		attribute.String("render.language", string(plan.Language)),
		attribute.Int("render.blocks", len(plan.Blocks)),
	)
	return plan, name, !known
}

// Generate renders doc and writes the PDF to w.
func (r *Renderer) Generate(ctx context.Context, doc *types.ResumeDocument, style string, w io.Writer) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "render.generate")
	defer span.End()

	plan, name, fallback := r.Plan(ctx, doc, style)
	stats, err := r.backend.Render(ctx, plan, w)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("render.pages", stats.Pages),
		attribute.Int64("render.bytes", stats.Bytes),
	)
	r.logger.Debug("Resume rendered",
		"style", plan.Theme.Name,
		"language", string(plan.Language),
		"pages", stats.Pages,
		"bytes", stats.Bytes)

	return &Result{Plan: plan, Style: name, Fallback: fallback, Stats: stats}, nil
}

// GenerateFile renders doc to path. The document is laid out in memory
// first; the file is only created once layout succeeded, and a failed
// write removes what was written.
func (r *Renderer) GenerateFile(ctx context.Context, doc *types.ResumeDocument, style, path string) (result *Result, err error) {
	var buf bytes.Buffer
	result, err = r.Generate(ctx, doc, style, &buf)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureOutputDir(path); err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeOutputWriteFailed,
			"Cannot prepare output path", err).WithContext("path", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeOutputWriteFailed,
			fmt.Sprintf("Cannot create %s", path), err).WithContext("path", path)
	}

	_, writeErr := buf.WriteTo(f)
	closeErr := f.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		if rmErr := utils.RemoveIfExists(path); rmErr != nil {
			r.logger.Warn("Failed to remove partial output", "path", path, "error", rmErr)
		}
		return nil, errors.NewRenderError(errors.ErrCodeOutputWriteFailed,
			fmt.Sprintf("Failed to write %s", path), writeErr).WithContext("path", path)
	}

	return result, nil
}
