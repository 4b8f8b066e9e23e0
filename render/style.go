// Package render provides terminal drawing primitives: styled cells on a
// growable canvas, display-width aware wrapping, and progress indicators.
package render

import (
	"fmt"
	"strings"
)

// Style represents text styling for a cell.
type Style struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Reverse   bool

	FgColor  int // ANSI foreground color code (0 = default)
	FgRGB    [3]uint8
	UseFgRGB bool

	BgColor  int // ANSI background color code (0 = default)
	BgRGB    [3]uint8
	UseBgRGB bool
}

// Merge overlays o on s. Attributes set in o win; colours in o replace
// colours in s only when o sets them.
func (s Style) Merge(o Style) Style {
	s.Bold = s.Bold || o.Bold
	s.Dim = s.Dim || o.Dim
	s.Italic = s.Italic || o.Italic
	s.Underline = s.Underline || o.Underline
	s.Reverse = s.Reverse || o.Reverse
	if o.FgColor > 0 || o.UseFgRGB {
		s.FgColor, s.FgRGB, s.UseFgRGB = o.FgColor, o.FgRGB, o.UseFgRGB
	}
	if o.BgColor > 0 || o.UseBgRGB {
		s.BgColor, s.BgRGB, s.UseBgRGB = o.BgColor, o.BgRGB, o.UseBgRGB
	}
	return s
}

// Sequence returns the SGR escape sequence that selects the style from a reset state.
func (s Style) Sequence() string {
	codes := []string{"0"}
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Italic {
		codes = append(codes, "3")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if s.Reverse {
		codes = append(codes, "7")
	}
	if s.UseFgRGB {
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", s.FgRGB[0], s.FgRGB[1], s.FgRGB[2]))
	} else if s.FgColor > 0 {
		codes = append(codes, fmt.Sprintf("%d", s.FgColor))
	}
	if s.UseBgRGB {
		codes = append(codes, fmt.Sprintf("48;2;%d;%d;%d", s.BgRGB[0], s.BgRGB[1], s.BgRGB[2]))
	} else if s.BgColor > 0 {
		codes = append(codes, fmt.Sprintf("%d", s.BgColor))
	}
	return "\033[" + strings.Join(codes, ";") + "m"
}

// Reset clears all attributes.
const Reset = "\033[0m"
