package render

// StyleName identifies a paragraph style.
type StyleName string

const (
	StylePersonName StyleName = "name"
	StyleTitle      StyleName = "title"
	StyleContact    StyleName = "contact"
	StyleSection    StyleName = "section"
	StyleCompany    StyleName = "company"
	StyleJobTitle   StyleName = "job_title"
	StyleDate       StyleName = "date"
	StyleBullet     StyleName = "bullet"
	StyleSummary    StyleName = "summary"
)

// ParagraphStyle describes how a text block is typeset. Font sizes and
// leading are in points, spacing and indents in millimetres.
type ParagraphStyle struct {
	FontSize    float64
	Bold        bool
	Color       ColorRole
	Align       Align
	SpaceBefore float64
	SpaceAfter  float64
	LeftIndent  float64
	// Leading is the line height; zero means 1.2 times the font size.
	Leading float64
}

// LineHeight returns the line height in millimetres.
func (s ParagraphStyle) LineHeight() float64 {
	leading := s.Leading
	if leading == 0 {
		leading = s.FontSize * 1.2
	}
	return leading * ptToMM
}

const ptToMM = 25.4 / 72

// Paragraph returns the paragraph style for name under this theme.
func (t Theme) Paragraph(name StyleName) ParagraphStyle {
	switch name {
	case StylePersonName:
		return ParagraphStyle{FontSize: 24, Bold: true, Color: ColorPrimary, Align: t.HeaderAlign, SpaceAfter: 2}
	case StyleTitle:
		return ParagraphStyle{FontSize: 12, Color: ColorLight, Align: t.HeaderAlign, SpaceAfter: 3}
	case StyleContact:
		return ParagraphStyle{FontSize: 9, Color: ColorLight, Align: t.HeaderAlign}
	case StyleSection:
		return ParagraphStyle{FontSize: 14, Bold: true, Color: ColorPrimary, Align: AlignLeft, SpaceBefore: 5, SpaceAfter: 3}
	case StyleCompany:
		return ParagraphStyle{FontSize: 11, Color: ColorText, Align: AlignLeft}
	case StyleJobTitle:
		return ParagraphStyle{FontSize: 10, Color: ColorSecondary, Align: AlignLeft}
	case StyleDate:
		return ParagraphStyle{FontSize: 9, Color: ColorLight, Align: AlignRight}
	case StyleBullet:
		return ParagraphStyle{FontSize: 10, Color: ColorText, Align: AlignLeft, LeftIndent: 5, SpaceBefore: 1}
	default:
		return ParagraphStyle{FontSize: 10, Color: ColorText, Align: AlignLeft, SpaceAfter: 3, Leading: 14}
	}
}
