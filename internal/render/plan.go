package render

import (
	"strings"

	"resumepdf/internal/types"
)

// RowSplit is the share of the text width given to the left column of a row.
const RowSplit = 0.7

// BlockKind is the type of a layout block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockRow       BlockKind = "row"
	BlockRule      BlockKind = "rule"
	BlockSpacer    BlockKind = "spacer"
)

// Span is a run of text with uniform weight.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Rule is a horizontal line across the text width.
type Rule struct {
	Thickness  float64   `json:"thickness"`
	Color      ColorRole `json:"color"`
	SpaceAfter float64   `json:"space_after"`
}

// Block is one element of the vertical flow. Paragraphs carry Spans in
// Style. Rows carry Spans in Style on the left and Right in RightStyle,
// right aligned. Spacers carry Height in millimetres.
type Block struct {
	Kind       BlockKind `json:"kind"`
	Section    Section   `json:"section,omitempty"`
	Style      StyleName `json:"style,omitempty"`
	Spans      []Span    `json:"spans,omitempty"`
	RightStyle StyleName `json:"right_style,omitempty"`
	Right      string    `json:"right,omitempty"`
	Rule       *Rule     `json:"rule,omitempty"`
	Height     float64   `json:"height,omitempty"`
}

// Text joins the block's spans.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Line renders the block as a single line of plain text. Rows separate the
// columns with two spaces. Rules and spacers have no text.
func (b Block) Line() (string, bool) {
	switch b.Kind {
	case BlockParagraph:
		return b.Text(), true
	case BlockRow:
		if b.Right == "" {
			return b.Text(), true
		}
		return b.Text() + "  " + b.Right, true
	default:
		return "", false
	}
}

// Plan is the device-independent layout of a resume: the resolved theme,
// the label language and the ordered blocks.
type Plan struct {
	Title    string   `json:"title,omitempty"`
	Theme    Theme    `json:"theme"`
	Language Language `json:"language"`
	Blocks   []Block  `json:"blocks"`
}

// Lines returns the text of the plan in reading order.
func (p *Plan) Lines() []string {
	lines := make([]string, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		if line, ok := b.Line(); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// SectionHeaders returns the header labels in output order.
func (p *Plan) SectionHeaders() []string {
	var headers []string
	for _, b := range p.Blocks {
		if b.Kind == BlockParagraph && b.Style == StyleSection {
			headers = append(headers, b.Text())
		}
	}
	return headers
}

// Sections returns the sections present in the plan in output order.
func (p *Plan) Sections() []Section {
	var sections []Section
	for _, b := range p.Blocks {
		if b.Kind == BlockParagraph && b.Style == StyleSection {
			sections = append(sections, b.Section)
		}
	}
	return sections
}

// DateRange joins two dates with " - ". An empty start or end is kept as
// an empty side; both empty yields "".
func DateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + " - " + end
}

// BuildPlan lays out doc in the named style. Unknown styles use the modern
// theme. The result depends only on its arguments.
func BuildPlan(doc *types.ResumeDocument, style string) *Plan {
	theme, _ := ResolveTheme(style)
	p := &planner{
		plan: &Plan{
			Title:    doc.Header.Name,
			Theme:    theme,
			Language: DetectLanguage(doc.Header.Name),
		},
	}

	p.header(doc.Header)
	p.summary(doc.Summary)
	p.experience(doc.Experience)
	p.education(doc.Education)
	p.skills(doc.Skills)
	p.projects(doc.Projects)
	p.certifications(doc.Certifications)
	p.languages(doc.Languages)

	return p.plan
}

type planner struct {
	plan    *Plan
	section Section
}

func plain(text string) []Span {
	return []Span{{Text: text}}
}

func (p *planner) add(b Block) {
	b.Section = p.section
	p.plan.Blocks = append(p.plan.Blocks, b)
}

func (p *planner) paragraph(style StyleName, spans ...Span) {
	p.add(Block{Kind: BlockParagraph, Style: style, Spans: spans})
}

func (p *planner) row(left []Span, right string) {
	p.add(Block{Kind: BlockRow, Style: StyleCompany, Spans: left, RightStyle: StyleDate, Right: right})
}

func (p *planner) spacer(height float64) {
	p.add(Block{Kind: BlockSpacer, Height: height})
}

func (p *planner) rule(r Rule) {
	p.add(Block{Kind: BlockRule, Rule: &r})
}

func (p *planner) bullet(text string) {
	p.paragraph(StyleBullet, Span{Text: "• " + text})
}

func (p *planner) open(section Section) {
	p.section = section
	p.paragraph(StyleSection, plain(section.Label(p.plan.Language))...)
	if p.plan.Theme.SectionRule {
		p.rule(Rule{Thickness: 0.5, Color: ColorLight, SpaceAfter: 2})
	}
}

func (p *planner) header(h types.Header) {
	contact := h.ContactParts()
	links := h.LinkParts()
	if h.Name == "" && h.Title == "" && len(contact) == 0 && len(links) == 0 {
		return
	}

	if h.Name != "" {
		p.paragraph(StylePersonName, plain(h.Name)...)
	}
	if h.Title != "" {
		p.paragraph(StyleTitle, plain(h.Title)...)
	}
	if len(contact) > 0 {
		p.paragraph(StyleContact, plain(strings.Join(contact, " | "))...)
	}
	if len(links) > 0 {
		p.paragraph(StyleContact, plain(strings.Join(links, " | "))...)
	}

	p.spacer(5)
	if p.plan.Theme.HeaderRule {
		p.rule(Rule{Thickness: 1, Color: ColorAccent, SpaceAfter: 3})
	}
}

func (p *planner) summary(text string) {
	if text == "" {
		return
	}
	p.open(SectionSummary)
	p.paragraph(StyleSummary, plain(text)...)
}

func (p *planner) experience(jobs []types.Job) {
	if len(jobs) == 0 {
		return
	}
	p.open(SectionExperience)
	for _, job := range jobs {
		left := []Span{{Text: job.Company, Bold: true}}
		if job.Location != "" {
			left = append(left, Span{Text: " - " + job.Location})
		}
		p.row(left, DateRange(job.StartDate, job.EndDate))

		if job.Title != "" {
			p.paragraph(StyleJobTitle, plain(job.Title)...)
		}
		for _, h := range job.Highlights {
			p.bullet(h)
		}
		p.spacer(3)
	}
}

func (p *planner) education(degrees []types.Degree) {
	if len(degrees) == 0 {
		return
	}
	p.open(SectionEducation)
	for _, d := range degrees {
		left := []Span{{Text: d.Institution, Bold: true}}
		if d.Location != "" {
			left = append(left, Span{Text: " - " + d.Location})
		}
		p.row(left, DateRange(d.StartDate, d.EndDate))

		line := d.Degree
		if d.GPA != "" {
			line += " | GPA: " + d.GPA
		}
		if line != "" {
			p.paragraph(StyleJobTitle, plain(line)...)
		}
		p.spacer(2)
	}
}

func (p *planner) skills(skills types.Skills) {
	if skills.IsEmpty() {
		return
	}
	p.open(SectionSkills)
	if skills.IsGrouped() {
		for _, g := range skills.Groups {
			p.paragraph(StyleBullet,
				Span{Text: g.Category + ":", Bold: true},
				Span{Text: " " + strings.Join(g.Items, ", ")},
			)
		}
	} else {
		p.paragraph(StyleSummary, plain(strings.Join(skills.Items, ", "))...)
	}
	p.spacer(2)
}

func (p *planner) projects(projects []types.Project) {
	if len(projects) == 0 {
		return
	}
	p.open(SectionProjects)
	for _, proj := range projects {
		name := []Span{{Text: proj.Name, Bold: true}}
		if proj.URL != "" {
			name = append(name, Span{Text: " - " + proj.URL})
		}
		p.paragraph(StyleCompany, name...)

		if proj.Description != "" {
			p.paragraph(StyleJobTitle, plain(proj.Description)...)
		}
		for _, h := range proj.Highlights {
			p.bullet(h)
		}
		p.spacer(2)
	}
}

func (p *planner) certifications(certs []types.Certification) {
	if len(certs) == 0 {
		return
	}
	p.open(SectionCertifications)
	for _, c := range certs {
		spans := []Span{{Text: "• "}, {Text: c.Name, Bold: true}}
		if c.Issuer != "" {
			spans = append(spans, Span{Text: " - " + c.Issuer})
		}
		if c.Date != "" {
			spans = append(spans, Span{Text: " (" + c.Date + ")"})
		}
		p.paragraph(StyleBullet, spans...)
	}
}

func (p *planner) languages(langs []types.Language) {
	if len(langs) == 0 {
		return
	}
	p.open(SectionLanguages)
	for _, l := range langs {
		p.paragraph(StyleBullet,
			Span{Text: l.Language + ":", Bold: true},
			Span{Text: " " + l.Proficiency},
		)
	}
}
