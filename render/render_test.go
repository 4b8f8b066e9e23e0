package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{"no wrap needed", "hello world", 20, []string{"hello world"}},
		{"simple wrap", "hello world foo bar", 11, []string{"hello world", "foo bar"}},
		{"multiple lines", "one two three four five six", 10, []string{"one two", "three four", "five six"}},
		{"preserves newlines", "first\n\nsecond", 20, []string{"first", "", "second"}},
		{"collapses whitespace", "a   b\tc", 20, []string{"a b c"}},
		{"long word breaks", "supercalifragilisticexpialidocious", 10, []string{"supercalif", "ragilistic", "expialidoc", "ious"}},
		{"zero width", "anything", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WrapText(tt.text, tt.width))
		})
	}
}

func TestWrapChars(t *testing.T) {
	assert.Equal(t, []string{"func ", "main(", ")"}, WrapChars("func main()", 5))
	assert.Equal(t, []string{"    x", ""}, WrapChars("\tx\n", 8))
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 4, StringWidth("日本"))
	assert.Equal(t, 1, StringWidth("é"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel...", Truncate("hello world", 6))
	assert.Equal(t, "he", Truncate("hello", 2))
	assert.Equal(t, "日", TruncateToWidth("日本", 3))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "bold", StripANSI("\033[0;1mbold\033[0m"))
}

func TestCanvasGrowsAndRenders(t *testing.T) {
	c := NewCanvas(10)
	assert.Equal(t, 0, c.Height())

	n := c.WriteString(2, 3, "hi there, world", Style{})
	assert.Equal(t, 8, n)
	assert.Equal(t, 4, c.Height())
	assert.Equal(t, "\n\n\n  hi there\n", c.PlainText())

	c.Set(-1, 0, 'x', Style{})
	c.Set(10, 0, 'x', Style{})
	assert.Equal(t, ' ', c.Get(0, 0).Rune)
	assert.Equal(t, ' ', c.Get(0, 99).Rune)
}

func TestCanvasStyledRender(t *testing.T) {
	c := NewCanvas(8)
	c.WriteString(0, 0, "ab", Style{Bold: true})
	c.DrawHLine(0, 1, 3, '-', Style{})

	assert.Equal(t, "\033[0;1mab"+Reset+"\n---\n", c.Render())

	var buf bytes.Buffer
	require.NoError(t, c.RenderTo(&buf))
	assert.Equal(t, c.Render(), buf.String())
}

func TestCanvasWideRunes(t *testing.T) {
	c := NewCanvas(5)
	assert.Equal(t, 4, c.WriteString(0, 0, "日本語", Style{}))
	assert.Equal(t, "日本\n", c.PlainText())
}

func TestStyleSequence(t *testing.T) {
	s := Style{Italic: true, FgRGB: [3]uint8{1, 2, 3}, UseFgRGB: true, BgColor: 44}
	assert.Equal(t, "\033[0;3;38;2;1;2;3;44m", s.Sequence())
}

func TestStyleMerge(t *testing.T) {
	base := Style{Dim: true, FgColor: 31}
	got := base.Merge(Style{Bold: true, UseFgRGB: true, FgRGB: [3]uint8{9, 9, 9}})
	assert.True(t, got.Bold)
	assert.True(t, got.Dim)
	assert.True(t, got.UseFgRGB)
	assert.Equal(t, 0, got.FgColor)

	kept := base.Merge(Style{Underline: true})
	assert.Equal(t, 31, kept.FgColor)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[>     ]", ProgressBar(8, 0))
	assert.Equal(t, "[===>  ]", ProgressBar(8, 0.5))
	assert.Equal(t, "[======]", ProgressBar(8, 1))
	assert.Equal(t, "[======]", ProgressBar(8, 7))
	assert.Equal(t, "", ProgressBar(2, 0.5))
}

func TestSpinnerFrames(t *testing.T) {
	s := NewSpinner()
	assert.Equal(t, "⠋", s.Frame())
	assert.False(t, s.Tick())
}
