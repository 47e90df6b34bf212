package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultStyle is used when no style is given and when the given style is unknown.
const DefaultStyle = "modern"

// Align is a horizontal alignment in the layout backend's notation.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Color is an sRGB color.
type Color struct {
	R, G, B uint8
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func mustHex(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHexColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ColorRole names a palette slot.
type ColorRole string

const (
	ColorPrimary   ColorRole = "primary"
	ColorSecondary ColorRole = "secondary"
	ColorText      ColorRole = "text"
	ColorLight     ColorRole = "light"
	ColorAccent    ColorRole = "accent"
)

// Palette is the fixed set of colors of a style.
type Palette struct {
	Primary   Color `json:"primary"`
	Secondary Color `json:"secondary"`
	Text      Color `json:"text"`
	Light     Color `json:"light"`
	Accent    Color `json:"accent"`
}

// Color returns the color for a role. Unknown roles use the text color.
func (p Palette) Color(role ColorRole) Color {
	switch role {
	case ColorPrimary:
		return p.Primary
	case ColorSecondary:
		return p.Secondary
	case ColorLight:
		return p.Light
	case ColorAccent:
		return p.Accent
	default:
		return p.Text
	}
}

// Theme is a named color and alignment preset applied to the whole document.
type Theme struct {
	Name        string  `json:"name"`
	Palette     Palette `json:"palette"`
	HeaderAlign Align   `json:"header_align"`
	// HeaderRule draws an accent line below the header block.
	HeaderRule bool `json:"header_rule"`
	// SectionRule draws a thin line below every section header.
	SectionRule bool `json:"section_rule"`
}

var themes = map[string]Theme{
	"modern": {
		Name: "modern",
		Palette: Palette{
			Primary:   mustHex("#2563eb"),
			Secondary: mustHex("#1e40af"),
			Text:      mustHex("#1f2937"),
			Light:     mustHex("#6b7280"),
			Accent:    mustHex("#3b82f6"),
		},
		HeaderAlign: AlignCenter,
		HeaderRule:  true,
	},
	"classic": {
		Name: "classic",
		Palette: Palette{
			Primary:   mustHex("#1f2937"),
			Secondary: mustHex("#374151"),
			Text:      mustHex("#111827"),
			Light:     mustHex("#6b7280"),
			Accent:    mustHex("#4b5563"),
		},
		HeaderAlign: AlignLeft,
		HeaderRule:  true,
		SectionRule: true,
	},
	"minimal": {
		Name: "minimal",
		Palette: Palette{
			Primary:   mustHex("#000000"),
			Secondary: mustHex("#333333"),
			Text:      mustHex("#000000"),
			Light:     mustHex("#666666"),
			Accent:    mustHex("#999999"),
		},
		HeaderAlign: AlignLeft,
	},
}

// ResolveTheme returns the theme for name. Unknown names resolve to the
// modern theme and ok is false.
func ResolveTheme(name string) (theme Theme, ok bool) {
	theme, ok = themes[name]
	if !ok {
		theme = themes[DefaultStyle]
	}
	return theme, ok
}

// StyleNames lists the known style names in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectStyle picks the first non-empty candidate, falling back to DefaultStyle.
func SelectStyle(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return DefaultStyle
}
