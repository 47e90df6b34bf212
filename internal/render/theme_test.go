package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		name      string
		known     bool
		primary   string
		align     Align
		headerRul bool
	}{
		{name: "modern", known: true, primary: "#2563eb", align: AlignCenter, headerRul: true},
		{name: "classic", known: true, primary: "#1f2937", align: AlignLeft, headerRul: true},
		{name: "minimal", known: true, primary: "#000000", align: AlignLeft, headerRul: false},
		{name: "baroque", known: false, primary: "#2563eb", align: AlignCenter, headerRul: true},
		{name: "", known: false, primary: "#2563eb", align: AlignCenter, headerRul: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, ok := ResolveTheme(tt.name)
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.primary, theme.Palette.Primary.Hex())
			assert.Equal(t, tt.align, theme.HeaderAlign)
			assert.Equal(t, tt.headerRul, theme.HeaderRule)
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#3b82f6")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x3b, G: 0x82, B: 0xf6}, c)

	c, err = ParseHexColor("FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", c.Hex())

	_, err = ParseHexColor("#fff")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}

func TestSelectStyle(t *testing.T) {
	assert.Equal(t, "classic", SelectStyle("", " classic ", "minimal"))
	assert.Equal(t, "minimal", SelectStyle("", "", "minimal"))
	assert.Equal(t, DefaultStyle, SelectStyle("", ""))
}

func TestStyleNames(t *testing.T) {
	assert.Equal(t, []string{"classic", "minimal", "modern"}, StyleNames())
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, English, DetectLanguage("Jane Doe"))
	assert.Equal(t, English, DetectLanguage(""))
	assert.Equal(t, English, DetectLanguage("こんにちは"))
	assert.Equal(t, Chinese, DetectLanguage("张伟"))
	assert.Equal(t, Chinese, DetectLanguage("Wei 张"))
}

func TestParagraphStyles(t *testing.T) {
	modern, _ := ResolveTheme("modern")
	classic, _ := ResolveTheme("classic")

	assert.Equal(t, AlignCenter, modern.Paragraph(StylePersonName).Align)
	assert.Equal(t, AlignLeft, classic.Paragraph(StylePersonName).Align)
	assert.Equal(t, AlignRight, modern.Paragraph(StyleDate).Align)
	assert.Equal(t, 24.0, modern.Paragraph(StylePersonName).FontSize)
	assert.InDelta(t, 14*ptToMM, modern.Paragraph(StyleSummary).LineHeight(), 1e-9)
	assert.InDelta(t, 12*ptToMM, modern.Paragraph(StyleBullet).LineHeight(), 1e-9)
}
