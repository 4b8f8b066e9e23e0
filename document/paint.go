package document

import (
	"fmt"
	"image"
	"strings"

	"webgu/html"
	"webgu/render"
	"webgu/theme"
)

const maxContentWidth = 80

// Layout units per terminal cell.
const (
	unitsPerColumn = 5
	unitsPerRow    = 10
)

// LinkSpot is a painted link and where it landed.
type LinkSpot struct {
	URL    string
	X, Y   int
	Length int
}

// Painter draws render nodes onto a canvas.
type Painter struct {
	theme        *theme.Theme
	canvas       *render.Canvas
	contentWidth int
	leftMargin   int
	y            int
	links        []LinkSpot
	titled       bool

	h1Count int
	h2Count int
}

// NewPainter creates a painter for a terminal of the given width.
func NewPainter(width int, th *theme.Theme) *Painter {
	if th == nil {
		th = theme.DefaultDark
	}
	contentWidth := min(width-4, maxContentWidth)
	if contentWidth < 20 {
		contentWidth = max(width, 20)
	}
	return &Painter{
		theme:        th,
		contentWidth: contentWidth,
		leftMargin:   max((width-contentWidth)/2, 0),
		canvas:       render.NewCanvas(max(width, contentWidth)),
	}
}

// Paint draws nodes below a header showing title and returns the canvas.
func (p *Painter) Paint(title string, nodes []Node) *render.Canvas {
	p.y = 0
	p.links = nil
	p.h1Count, p.h2Count = 0, 0
	p.titled = title != ""

	if p.titled {
		p.header(title)
	}
	for i := range nodes {
		p.paintNode(&nodes[i])
	}
	return p.canvas
}

// Links returns the links placed by the last Paint.
func (p *Painter) Links() []LinkSpot {
	return p.links
}

func (p *Painter) header(title string) {
	style := p.theme.Accent.Style()
	style.Bold = true
	text := render.Truncate(title, p.contentWidth)
	p.canvas.WriteString(p.leftMargin, p.y, text, style)
	p.y++
	p.canvas.DrawHLine(p.leftMargin, p.y, render.StringWidth(text), '═', p.theme.Dim.Style())
	p.y += 2
}

func cells(units, per int) int {
	if units <= 0 {
		return 0
	}
	return units / per
}

// box returns the indent and usable width for a node.
func (p *Painter) box(h theme.Hints) (x, width int) {
	left := cells(h.Margin.Left, unitsPerColumn)
	right := cells(h.Margin.Right, unitsPerColumn)
	width = p.contentWidth - left - right
	if width < 10 {
		return p.leftMargin, p.contentWidth
	}
	return p.leftMargin + left, width
}

func textStyle(h theme.Hints) render.Style {
	return render.Style{
		Bold:      h.Bold,
		Italic:    h.Italic,
		Underline: h.Underline,
		Dim:       h.Dim || h.Monospace,
	}
}

func (p *Painter) paintNode(n *Node) {
	switch n.Kind {
	case KindEmpty:
		p.notice(n.Text, p.theme.Dim.Style())
		return
	case KindTruncated:
		p.notice(n.Text, p.theme.Warning.Style())
		return
	}
	if n.Tag == "title" && p.titled {
		return
	}

	p.y += cells(n.Hints.Margin.Top, unitsPerRow)
	switch n.Category {
	case html.CategoryHeading:
		p.heading(n)
	case html.CategoryLink:
		p.link(n)
	case html.CategoryImage:
		p.image(n)
	case html.CategoryInput:
		p.input(n)
	case html.CategoryButton:
		p.prefixed(n, "", "< ", " >")
	case html.CategoryListItem:
		p.prefixed(n, "• ", "", "")
	case html.CategoryTableCellHeader, html.CategoryTableCellData:
		p.prefixed(n, "│ ", "", "")
	case html.CategoryQuote:
		p.prefixed(n, "┃ ", "", "")
	case html.CategoryRule:
		x, w := p.box(n.Hints)
		p.canvas.DrawHLine(x, p.y, w, '─', p.theme.Dim.Style())
		p.y++
	case html.CategoryLineBreak:
		p.y++
	default:
		p.prefixed(n, "", "", "")
	}
	p.y += cells(n.Hints.Margin.Bottom, unitsPerRow)
}

func (p *Painter) notice(text string, style render.Style) {
	p.y++
	for _, line := range render.WrapText(text, p.contentWidth) {
		pad := (p.contentWidth - render.StringWidth(line)) / 2
		p.canvas.WriteString(p.leftMargin+pad, p.y, line, style)
		p.y++
	}
	p.y++
}

// lines wraps text for a node according to its hints.
func lines(n *Node, width int) []string {
	text := n.Text
	if n.Hints.Uppercase {
		text = strings.ToUpper(text)
	}
	if n.Hints.Wrap == theme.WrapChar {
		return render.WrapChars(text, width)
	}
	return render.WrapText(text, width)
}

func (p *Painter) prefixed(n *Node, prefix, open, suffix string) {
	x, w := p.box(n.Hints)
	pw := render.StringWidth(prefix)
	style := textStyle(n.Hints)

	saved := n.Text
	n.Text = open + n.Text + suffix
	wrapped := lines(n, w-pw)
	n.Text = saved

	for i, line := range wrapped {
		if i == 0 {
			p.canvas.WriteString(x, p.y, prefix, p.theme.Dim.Style())
		} else if prefix == "│ " || prefix == "┃ " {
			p.canvas.WriteString(x, p.y, prefix, p.theme.Dim.Style())
		}
		p.canvas.WriteString(x+pw, p.y, line, style)
		p.y++
	}
}

func (p *Painter) heading(n *Node) {
	x, w := p.box(n.Hints)
	text := n.Text
	switch n.Tag {
	case "h1":
		p.h1Count++
		p.h2Count = 0
		text = fmt.Sprintf("%d. %s", p.h1Count, text)
	case "h2":
		p.h2Count++
		if p.h1Count > 0 {
			text = fmt.Sprintf("%d.%d  %s", p.h1Count, p.h2Count, text)
		}
	}
	if n.Hints.Uppercase {
		text = strings.ToUpper(text)
	}

	style := textStyle(n.Hints)
	widest := 0
	for _, line := range render.WrapText(text, w) {
		widest = max(widest, p.canvas.WriteString(x, p.y, line, style))
		p.y++
	}

	switch n.Tag {
	case "h1", "title":
		p.canvas.DrawHLine(x, p.y, widest, '═', render.Style{})
		p.y++
	case "h2":
		p.canvas.DrawHLine(x, p.y, widest, '─', render.Style{Dim: true})
		p.y++
	}
}

func (p *Painter) link(n *Node) {
	x, w := p.box(n.Hints)
	style := textStyle(n.Hints)
	if n.Link != nil && n.Link.Navigable {
		style = style.Merge(p.theme.Link.Style())
	} else {
		style.Underline = false
		style = style.Merge(p.theme.Dim.Style())
	}

	for _, line := range render.WrapText(n.Text, w) {
		used := p.canvas.WriteString(x, p.y, line, style)
		if n.Link != nil && n.Link.Navigable {
			p.links = append(p.links, LinkSpot{URL: n.Link.URL, X: x, Y: p.y, Length: used})
		}
		p.y++
	}
}

func (p *Painter) image(n *Node) {
	x, w := p.box(n.Hints)
	img := n.Image
	if img != nil && img.Thumbnail != nil {
		p.halfBlocks(x, img.Thumbnail, w)
	}

	var caption string
	style := p.theme.Dim.Style()
	switch {
	case img == nil || img.State == ImagePlaceholder:
		caption = "▢ " + n.Text
	case img.State == ImageFailed:
		caption = n.Text
		style = p.theme.Error.Style()
	default:
		label := img.Alt
		if label == "" {
			label = n.Text
		}
		caption = "▣ " + label
		if img.Width > 0 {
			caption += fmt.Sprintf(" (%dx%d)", img.Width, img.Height)
		}
	}
	for _, line := range render.WrapText(caption, w) {
		p.canvas.WriteString(x, p.y, line, style)
		p.y++
	}
}

// halfBlocks draws img using upper half blocks, two pixel rows per cell.
func (p *Painter) halfBlocks(x int, img image.Image, maxWidth int) {
	b := img.Bounds()
	width := min(b.Dx(), maxWidth)
	for py := b.Min.Y; py < b.Max.Y; py += 2 {
		for px := 0; px < width; px++ {
			style := render.Style{FgRGB: rgb(img, b.Min.X+px, py), UseFgRGB: true}
			if py+1 < b.Max.Y {
				style.BgRGB, style.UseBgRGB = rgb(img, b.Min.X+px, py+1), true
			}
			p.canvas.Set(x+px, p.y, '▀', style)
		}
		p.y++
	}
}

func rgb(img image.Image, x, y int) [3]uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func (p *Painter) input(n *Node) {
	x, w := p.box(n.Hints)
	in := n.Input
	if in == nil {
		in = &Input{}
	}

	label := n.Text
	var text string
	style := render.Style{}
	switch in.Kind {
	case InputButton:
		if in.Value != "" {
			label = in.Value
		}
		text = "[ " + label + " ]"
		style = render.Style{Bold: true, Reverse: true}
	case InputCheckbox:
		mark := "[ ]"
		if in.Checked {
			mark = "[x]"
		}
		text = mark + " " + label
	case InputRadio:
		mark := "( )"
		if in.Checked {
			mark = "(•)"
		}
		text = mark + " " + label
	default:
		display := in.Value
		if display == "" {
			display = in.Placeholder
		}
		if display == "" {
			display = in.Name
		}
		boxWidth := min(40, w)
		display = render.TruncateToWidth(display, boxWidth-2)
		text = "[" + display + strings.Repeat("_", max(boxWidth-2-render.StringWidth(display), 0)) + "]"
		style = render.Style{Underline: true}
	}
	p.canvas.WriteString(x, p.y, render.Truncate(text, w), style)
	p.y++
}
