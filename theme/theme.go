// Package theme resolves presentation for rendered pages: per-tag spacing and
// emphasis hints, and the terminal colour palette.
package theme

import (
	"strings"

	"webgu/render"
)

// Color represents an RGB color that can render to ANSI.
type Color struct {
	R, G, B uint8
}

// Theme defines the palette used when painting a page to the terminal.
// Body text uses terminal attributes (bold/dim/underline); colours mark
// links, captions and status lines.
type Theme struct {
	Name string
	Dark bool

	Background    Color
	TransparentBg bool // use the terminal's own background
	Foreground    Color
	Dim           Color

	Link    Color
	Accent  Color // headings, progress
	Error   Color
	Warning Color // truncation notices
	Success Color
	Info    Color
}

// Style creates a render.Style with the given foreground color.
func (c Color) Style() render.Style {
	return render.Style{
		FgRGB:    [3]uint8{c.R, c.G, c.B},
		UseFgRGB: true,
	}
}

// StyleBg creates a render.Style with the given background color.
func (c Color) StyleBg() render.Style {
	return render.Style{
		BgRGB:    [3]uint8{c.R, c.G, c.B},
		UseBgRGB: true,
	}
}

// BaseStyle returns the base render.Style for the theme.
// If TransparentBg is true, no colors are set.
func (t *Theme) BaseStyle() render.Style {
	if t.TransparentBg {
		return render.Style{}
	}
	return t.Foreground.Style().Merge(t.Background.StyleBg())
}

// Hex creates a Color from a hex string like "#RRGGBB" or "RRGGBB".
// Malformed input yields black.
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}
	}
	return Color{
		R: hexByte(s[0:2]),
		G: hexByte(s[2:4]),
		B: hexByte(s[4:6]),
	}
}

func hexByte(s string) uint8 {
	var v uint8
	for _, c := range s {
		v *= 16
		switch {
		case c >= '0' && c <= '9':
			v += uint8(c - '0')
		case c >= 'a' && c <= 'f':
			v += uint8(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			v += uint8(c - 'A' + 10)
		}
	}
	return v
}

// Built-in themes
var (
	DefaultDark = &Theme{
		Name:          "default-dark",
		Dark:          true,
		TransparentBg: true,
		Foreground:    Hex("e0e0e0"),
		Dim:           Hex("666666"),
		Link:          Hex("5f87d7"),
		Accent:        Hex("5fd7d7"), // cyan
		Error:         Hex("d75f5f"),
		Warning:       Hex("d7af5f"),
		Success:       Hex("5fd75f"),
		Info:          Hex("5f87d7"),
	}

	DefaultLight = &Theme{
		Name:       "default-light",
		Background: Hex("fafafa"),
		Foreground: Hex("1a1a1a"),
		Dim:        Hex("888888"),
		Link:       Hex("1565c0"),
		Accent:     Hex("00838f"), // teal
		Error:      Hex("c62828"),
		Warning:    Hex("f57c00"),
		Success:    Hex("2e7d32"),
		Info:       Hex("1565c0"),
	}

	// Nord - Arctic, north-bluish color palette
	Nord = &Theme{
		Name:       "nord",
		Dark:       true,
		Background: Hex("2e3440"), // nord0
		Foreground: Hex("d8dee9"), // nord4
		Dim:        Hex("4c566a"), // nord3
		Link:       Hex("81a1c1"), // nord9
		Accent:     Hex("88c0d0"), // nord8
		Error:      Hex("bf616a"), // nord11
		Warning:    Hex("d08770"), // nord12
		Success:    Hex("a3be8c"), // nord14
		Info:       Hex("5e81ac"), // nord10
	}
)

// All lists the built-in themes.
var All = []*Theme{DefaultDark, DefaultLight, Nord}

// ByName returns the built-in theme with the given name.
func ByName(name string) (*Theme, bool) {
	for _, t := range All {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}
