package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"resumepdf/internal/errors"
	"resumepdf/internal/extract"
	"resumepdf/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{PDF: PDFOptions{Compress: true}}, errors.Discard())
	require.NoError(t, err)
	return r
}

func renderBytes(t *testing.T, r *Renderer, doc *types.ResumeDocument, style string) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := r.Generate(context.Background(), doc, style, &buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestGenerateEndToEnd(t *testing.T) {
	r := newTestRenderer(t)
	data := renderBytes(t, r, janeDoe(), "")

	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	text, err := extract.Text(context.Background(), data)
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Experience")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "2020 - 2022")
	assert.Contains(t, text, "• Led X")
}

func TestGenerateOmitsEmptySections(t *testing.T) {
	r := newTestRenderer(t)
	doc := &types.ResumeDocument{
		Header:  types.Header{Name: "Jane Doe"},
		Summary: "Builds reliable backends.",
	}

	text, err := extract.Text(context.Background(), renderBytes(t, r, doc, "modern"))
	require.NoError(t, err)
	assert.Contains(t, text, "Summary")
	assert.NotContains(t, text, "Experience")
	assert.NotContains(t, text, "Education")
}

func TestGenerateIsByteIdentical(t *testing.T) {
	r := newTestRenderer(t)

	for _, style := range StyleNames() {
		t.Run(style, func(t *testing.T) {
			first := renderBytes(t, r, fullDocument(), style)
			second := renderBytes(t, r, fullDocument(), style)
			assert.True(t, bytes.Equal(first, second), "output differs between runs")
		})
	}

	other := newTestRenderer(t)
	assert.Equal(t, renderBytes(t, r, fullDocument(), "classic"), renderBytes(t, other, fullDocument(), "classic"))
}

func TestGenerateCreationTimeIsConfigurable(t *testing.T) {
	stamp := time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewRenderer(Options{PDF: PDFOptions{CreationTime: stamp}}, nil)
	require.NoError(t, err)

	data := renderBytes(t, r, janeDoe(), "modern")
	assert.Contains(t, string(data), "D:20300601")
}

func TestGenerateUnknownStyleMatchesModern(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	result, err := r.Generate(context.Background(), janeDoe(), "baroque", &buf)
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "baroque", result.Style)
	assert.Equal(t, "modern", result.Plan.Theme.Name)

	assert.Equal(t, renderBytes(t, r, janeDoe(), "modern"), buf.Bytes())
}

func TestGenerateStylePrecedence(t *testing.T) {
	r, err := NewRenderer(Options{DefaultStyle: "minimal"}, nil)
	require.NoError(t, err)

	doc := janeDoe()
	plan, name, _ := r.Plan(context.Background(), doc, "")
	assert.Equal(t, "minimal", name)
	assert.Equal(t, "minimal", plan.Theme.Name)

	doc.Style = "classic"
	_, name, _ = r.Plan(context.Background(), doc, "")
	assert.Equal(t, "classic", name)

	_, name, _ = r.Plan(context.Background(), doc, "modern")
	assert.Equal(t, "modern", name)
}

func TestGeneratePaginates(t *testing.T) {
	r := newTestRenderer(t)
	doc := &types.ResumeDocument{Header: types.Header{Name: "Jane Doe"}}
	for i := 0; i < 40; i++ {
		doc.Experience = append(doc.Experience, types.Job{
			Company:    fmt.Sprintf("Company %d", i),
			StartDate:  "2020",
			EndDate:    "2021",
			Highlights: []string{"Did one thing", "Did another thing"},
		})
	}

	var buf bytes.Buffer
	result, err := r.Generate(context.Background(), doc, "modern", &buf)
	require.NoError(t, err)
	assert.Greater(t, result.Stats.Pages, 1)
	assert.Equal(t, int64(buf.Len()), result.Stats.Bytes)

	pages, err := extract.Pages(context.Background(), buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, pages, result.Stats.Pages)
	assert.Contains(t, pages[len(pages)-1], "Company 39")
}

func TestGenerateFile(t *testing.T) {
	r := newTestRenderer(t)
	path := filepath.Join(t.TempDir(), "out", "resume.pdf")

	result, err := r.GenerateFile(context.Background(), janeDoe(), "classic", path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, result.Stats.Bytes, info.Size())
}

func TestGenerateFileFailureLeavesNoFile(t *testing.T) {
	r := newTestRenderer(t)
	dir := t.TempDir()

	_, err := r.GenerateFile(context.Background(), janeDoe(), "modern", dir)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeRender))

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	target := filepath.Join(blocker, "resume.pdf")

	_, err = r.GenerateFile(context.Background(), janeDoe(), "modern", target)
	require.Error(t, err)
	_, statErr := os.Stat(target)
	assert.Error(t, statErr)
}

func TestGenerateCancelled(t *testing.T) {
	r := newTestRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Generate(ctx, janeDoe(), "modern", &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRendererMissingFont(t *testing.T) {
	_, err := NewRenderer(Options{PDF: PDFOptions{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}}, nil)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeRender, appErr.Type)
	assert.Equal(t, errors.ErrCodeFontLoadFailed, appErr.Code)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("disk full")
}

func TestGenerateWriteFailure(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.Generate(context.Background(), janeDoe(), "modern", failingWriter{})
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeOutputWriteFailed, appErr.Code)
}

const cjkFont = "testdata/cjk-box.ttf"

func chineseDocument() *types.ResumeDocument {
	doc := fullDocument()
	doc.Header.Name = "张伟"
	doc.Summary = "后端工程师"
	return doc
}

// showText is the string operand fpdf writes for s with a UTF-8 font:
// UTF-16BE code units, escaped as a PDF literal.
func showText(s string) string {
	var sb strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		sb.WriteByte(byte(u >> 8))
		sb.WriteByte(byte(u))
	}
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`).Replace(sb.String())
}

func TestGenerateCoreFontRejectsChinese(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	_, err := r.Generate(context.Background(), chineseDocument(), "modern", &buf)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeRender, appErr.Type)
	assert.Equal(t, errors.ErrCodeFontRequired, appErr.Code)
	assert.Contains(t, appErr.Message, "render.fontPath")
	assert.Contains(t, appErr.Message, "--font")
	assert.Zero(t, buf.Len())

	path := filepath.Join(t.TempDir(), "resume.pdf")
	_, err = r.GenerateFile(context.Background(), chineseDocument(), "modern", path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateCoreFontAcceptsWesternEuropean(t *testing.T) {
	r := newTestRenderer(t)
	doc := janeDoe()
	doc.Header.Name = "José Müller"
	doc.Experience[0].Highlights = []string{"Cut costs by 20% – €1M"}

	text, err := extract.Text(context.Background(), renderBytes(t, r, doc, "modern"))
	require.NoError(t, err)
	assert.Contains(t, text, "Experience")
}

func TestGenerateWithUnicodeFont(t *testing.T) {
	r, err := NewRenderer(Options{PDF: PDFOptions{FontPath: cjkFont}}, errors.Discard())
	require.NoError(t, err)

	var buf bytes.Buffer
	result, err := r.Generate(context.Background(), chineseDocument(), "modern", &buf)
	require.NoError(t, err)
	data := buf.String()

	assert.Contains(t, data, "/Encoding /Identity-H")
	assert.Contains(t, data, "/FontFile2")
	assert.Contains(t, data, "("+showText("张伟")+")Tj")
	assert.Contains(t, data, "("+showText("后端工程师")+")Tj")

	headers := result.Plan.SectionHeaders()
	require.Contains(t, headers, "工作经历")
	for _, header := range headers {
		assert.Contains(t, data, "("+showText(header)+")Tj", "section header %s", header)
	}
	assert.NotContains(t, data, "(..)Tj")
}

func TestGenerateWithUnicodeFontIsByteIdentical(t *testing.T) {
	opts := Options{PDF: PDFOptions{FontPath: cjkFont, Compress: true}}
	r, err := NewRenderer(opts, nil)
	require.NoError(t, err)
	other, err := NewRenderer(opts, nil)
	require.NoError(t, err)

	first := renderBytes(t, r, chineseDocument(), "classic")
	assert.Equal(t, first, renderBytes(t, r, chineseDocument(), "classic"))
	assert.Equal(t, first, renderBytes(t, other, chineseDocument(), "classic"))
}

func TestRowWrappingPastPageKeepsDateOnFirstPage(t *testing.T) {
	r, err := NewPDFRenderer(PDFOptions{Compress: true})
	require.NoError(t, err)

	theme, _ := ResolveTheme("modern")
	plan := &Plan{
		Theme: theme,
		Blocks: []Block{
			// Leaves room for two company lines above the bottom margin.
			{Kind: BlockSpacer, Height: 255},
			{
				Kind:       BlockRow,
				Style:      StyleCompany,
				Spans:      []Span{{Text: strings.Repeat("Northwind Traders International ", 12), Bold: true}},
				RightStyle: StyleDate,
				Right:      "2019 - 2023",
			},
			{Kind: BlockParagraph, Style: StyleBullet, Spans: []Span{{Text: "• Shipped the billing rewrite"}}},
		},
	}

	var buf bytes.Buffer
	stats, err := r.Render(context.Background(), plan, &buf)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pages)

	pages, err := extract.Pages(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "2019 - 2023")
	assert.Contains(t, pages[0], "Northwind")
	assert.NotContains(t, pages[1], "2019 - 2023")
	assert.Contains(t, pages[1], "Northwind")
	assert.Contains(t, pages[1], "Shipped the billing rewrite")
}
