package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Cell represents a single character cell in the terminal.
type Cell struct {
	Rune  rune
	Style Style
}

// Canvas is a fixed-width drawing surface that grows downwards as rows are
// written. Rendered pages have no natural height, so rows are allocated on
// demand.
type Canvas struct {
	width int
	rows  [][]Cell
}

// NewCanvas creates an empty canvas of the given width.
func NewCanvas(width int) *Canvas {
	if width < 1 {
		width = 1
	}
	return &Canvas{width: width}
}

// TerminalSize returns the dimensions of the terminal attached to f.
func TerminalSize(f *os.File) (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return len(c.rows) }

func (c *Canvas) grow(y int) {
	for len(c.rows) <= y {
		row := make([]Cell, c.width)
		for x := range row {
			row[x] = Cell{Rune: ' '}
		}
		c.rows = append(c.rows, row)
	}
}

// Set places a rune at the given position. Writes left of the canvas, right
// of it or above it are dropped.
func (c *Canvas) Set(x, y int, r rune, style Style) {
	if x < 0 || x >= c.width || y < 0 {
		return
	}
	c.grow(y)
	c.rows[y][x] = Cell{Rune: r, Style: style}
}

// Get returns the cell at the given position.
func (c *Canvas) Get(x, y int) Cell {
	if x < 0 || x >= c.width || y < 0 || y >= len(c.rows) {
		return Cell{Rune: ' '}
	}
	return c.rows[y][x]
}

// WriteString writes s starting at the given position and returns the
// number of cells used. Text past the right edge is dropped.
func (c *Canvas) WriteString(x, y int, s string, style Style) int {
	pos := 0
	for _, r := range s {
		w := UnicodeWidth(r)
		if w == 0 {
			continue
		}
		if x+pos+w > c.width {
			break
		}
		c.Set(x+pos, y, r, style)
		// Wide runes occupy two cells; the second is a placeholder.
		if w == 2 {
			c.Set(x+pos+1, y, 0, style)
		}
		pos += w
	}
	return pos
}

// DrawHLine draws a horizontal line.
func (c *Canvas) DrawHLine(x, y, length int, r rune, style Style) {
	for i := 0; i < length; i++ {
		c.Set(x+i, y, r, style)
	}
}

// Render returns the canvas as text with ANSI styling. Trailing blank cells
// on each row are trimmed.
func (c *Canvas) Render() string {
	return c.render(true)
}

// PlainText returns the canvas content without escape sequences.
func (c *Canvas) PlainText() string {
	return c.render(false)
}

// RenderTo writes the styled canvas to w.
func (c *Canvas) RenderTo(w io.Writer) error {
	_, err := io.WriteString(w, c.Render())
	return err
}

func (c *Canvas) render(styled bool) string {
	var sb strings.Builder
	for _, row := range c.rows {
		end := len(row)
		for end > 0 && row[end-1].Rune == ' ' && row[end-1].Style == (Style{}) {
			end--
		}

		var current Style
		for _, cell := range row[:end] {
			if styled && cell.Style != current {
				sb.WriteString(cell.Style.Sequence())
				current = cell.Style
			}
			if cell.Rune != 0 {
				sb.WriteRune(cell.Rune)
			}
		}
		if styled && current != (Style{}) {
			sb.WriteString(Reset)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
