package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"resumepdf/internal/errors"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// Page geometry in millimetres.
const (
	pageSize     = "A4"
	marginSide   = 20.0
	marginTop    = 15.0
	marginBottom = 15.0
)

const (
	coreFamily = "Helvetica"
	fontFamily = "resume"
)

// DefaultCreationTime stamps documents when no time is configured.
var DefaultCreationTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// PDFOptions configures the layout backend.
type PDFOptions struct {
	// FontPath is a TrueType font with the glyphs the document needs. Empty
	// means the core Helvetica font with a cp1252 character set.
	FontPath string
	// CreationTime is written as both creation and modification date.
	CreationTime time.Time
	Compress     bool
	Creator      string
}

// PDFRenderer paginates a Plan with fpdf.
type PDFRenderer struct {
	opts PDFOptions
	font []byte
}

// NewPDFRenderer loads the configured font once so every render reuses it.
func NewPDFRenderer(opts PDFOptions) (*PDFRenderer, error) {
	if opts.CreationTime.IsZero() {
		opts.CreationTime = DefaultCreationTime
	}
	r := &PDFRenderer{opts: opts}
	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, errors.NewRenderError(errors.ErrCodeFontLoadFailed,
				fmt.Sprintf("Cannot read font %s", opts.FontPath), err).
				WithContext("font_path", opts.FontPath)
		}
		r.font = data
	}
	return r, nil
}

// RenderStats describes a finished document.
type RenderStats struct {
	Pages int
	Bytes int64
}

// Render typesets plan and writes the PDF to w.
func (r *PDFRenderer) Render(ctx context.Context, plan *Plan, w io.Writer) (RenderStats, error) {
	if err := ctx.Err(); err != nil {
		return RenderStats{}, err
	}
	if r.font == nil {
		if err := checkCoreFont(plan); err != nil {
			return RenderStats{}, err
		}
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		SizeStr:        pageSize,
	})
	doc.SetCreationDate(r.opts.CreationTime)
	doc.SetModificationDate(r.opts.CreationTime)
	doc.SetCatalogSort(true)
	doc.SetCompression(r.opts.Compress)
	doc.SetMargins(marginSide, marginTop, marginSide)
	doc.SetAutoPageBreak(true, marginBottom)

	l := &layout{pdf: doc, theme: plan.Theme, family: coreFamily}
	if r.font != nil {
		doc.AddUTF8FontFromBytes(fontFamily, "", r.font)
		doc.AddUTF8FontFromBytes(fontFamily, "B", r.font)
		if doc.Err() {
			return RenderStats{}, errors.NewRenderError(errors.ErrCodeFontLoadFailed,
				fmt.Sprintf("Cannot load font %s", r.opts.FontPath), doc.Error()).
				WithContext("font_path", r.opts.FontPath)
		}
		l.family = fontFamily
		l.tr = func(s string) string { return s }
	} else {
		l.tr = doc.UnicodeTranslatorFromDescriptor("")
	}

	if plan.Title != "" {
		doc.SetTitle(plan.Title, true)
		doc.SetAuthor(plan.Title, true)
	}
	if r.opts.Creator != "" {
		doc.SetCreator(r.opts.Creator, true)
	}

	doc.AddPage()
	for i, b := range plan.Blocks {
		if i%32 == 0 {
			if err := ctx.Err(); err != nil {
				return RenderStats{}, err
			}
		}
		l.block(b)
		if doc.Err() {
			break
		}
	}
	if doc.Err() {
		return RenderStats{}, errors.NewRenderError(errors.ErrCodeRenderFailed,
			"Layout failed", doc.Error())
	}

	cw := &countingWriter{w: w}
	if err := doc.Output(cw); err != nil {
		return RenderStats{}, errors.NewRenderError(errors.ErrCodeOutputWriteFailed,
			"Failed to write PDF", err)
	}
	return RenderStats{Pages: doc.PageNo(), Bytes: cw.n}, nil
}

// checkCoreFont fails when plan draws a rune the core font cannot encode.
// fpdf would print it as '.'.
func checkCoreFont(plan *Plan) error {
	for _, b := range plan.Blocks {
		texts := make([]string, 0, len(b.Spans)+1)
		for _, s := range b.Spans {
			texts = append(texts, s.Text)
		}
		texts = append(texts, b.Right)
		for _, text := range texts {
			for _, c := range text {
				if _, ok := charmap.Windows1252.EncodeRune(c); !ok {
					return errors.NewRenderError(errors.ErrCodeFontRequired,
						fmt.Sprintf("Text %q needs a Unicode font; set render.fontPath or pass --font", text), nil).
						WithContext("rune", string(c)).
						WithContext("section", string(b.Section))
				}
			}
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type layout struct {
	pdf    *fpdf.Fpdf
	theme  Theme
	family string
	tr     func(string) string
}

func (l *layout) block(b Block) {
	switch b.Kind {
	case BlockParagraph:
		l.paragraph(b)
	case BlockRow:
		l.row(b)
	case BlockRule:
		if b.Rule != nil {
			l.rule(*b.Rule)
		}
	case BlockSpacer:
		l.pdf.Ln(b.Height)
	}
}

func (l *layout) apply(style ParagraphStyle, bold bool) {
	fontStyle := ""
	if bold || style.Bold {
		fontStyle = "B"
	}
	l.pdf.SetFont(l.family, fontStyle, style.FontSize)
	c := l.theme.Palette.Color(style.Color)
	l.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

func (l *layout) paragraph(b Block) {
	style := l.theme.Paragraph(b.Style)
	lh := style.LineHeight()

	if style.SpaceBefore > 0 {
		l.pdf.Ln(style.SpaceBefore)
	}

	left, _, _, _ := l.pdf.GetMargins()
	if style.LeftIndent > 0 {
		l.pdf.SetLeftMargin(left + style.LeftIndent)
		l.pdf.SetX(left + style.LeftIndent)
	}

	if len(b.Spans) == 1 {
		l.apply(style, b.Spans[0].Bold)
		l.pdf.MultiCell(0, lh, l.tr(b.Spans[0].Text), "", string(style.Align), false)
	} else {
		for _, s := range b.Spans {
			l.apply(style, s.Bold)
			l.pdf.Write(lh, l.tr(s.Text))
		}
		l.pdf.Ln(lh)
	}

	if style.LeftIndent > 0 {
		l.pdf.SetLeftMargin(left)
		l.pdf.SetX(left)
	}
	if style.SpaceAfter > 0 {
		l.pdf.Ln(style.SpaceAfter)
	}
}

// row lays out the left spans in the first RowSplit of the text width and
// the right text right-aligned in the remainder, sharing the top edge.
func (l *layout) row(b Block) {
	leftStyle := l.theme.Paragraph(b.Style)
	rightStyle := l.theme.Paragraph(b.RightStyle)
	lh := max(leftStyle.LineHeight(), rightStyle.LineHeight())

	pageW, pageH := l.pdf.GetPageSize()
	left, _, right, bottom := l.pdf.GetMargins()
	width := pageW - left - right
	leftW := width * RowSplit

	if l.pdf.GetY()+lh > pageH-bottom {
		l.pdf.AddPage()
	}
	top := l.pdf.GetY()
	page := l.pdf.PageNo()

	l.pdf.SetRightMargin(right + width - leftW)
	l.pdf.SetX(left)
	for _, s := range b.Spans {
		l.apply(leftStyle, s.Bold)
		l.pdf.Write(lh, l.tr(s.Text))
	}
	l.pdf.Ln(lh)
	bottomY := l.pdf.GetY()
	last := l.pdf.PageNo()
	l.pdf.SetRightMargin(right)

	// The right cell sits beside the first left line, which stays on the
	// page the row started on even when the left text wraps past it.
	if b.Right != "" {
		l.pdf.SetPage(page)
		l.apply(rightStyle, false)
		l.pdf.SetXY(left+leftW, top)
		l.pdf.CellFormat(width-leftW, lh, l.tr(b.Right), "", 0, string(AlignRight), false, 0, "")
		if last != page {
			l.pdf.SetPage(last)
			l.apply(leftStyle, false)
		}
	}
	if last != page {
		l.pdf.SetXY(left, bottomY)
		return
	}
	l.pdf.SetXY(left, max(bottomY, top+lh))
}

func (l *layout) rule(r Rule) {
	pageW, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	c := l.theme.Palette.Color(r.Color)

	l.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	l.pdf.SetLineWidth(r.Thickness * ptToMM)
	y := l.pdf.GetY()
	l.pdf.Line(left, y, pageW-right, y)
	l.pdf.Ln(r.SpaceAfter)
}
