package document

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgu/html"
	"webgu/theme"
)

func paint(t *testing.T, markup string) (string, *Painter) {
	t.Helper()
	doc := html.NewScanner(html.DefaultOptions()).Parse(markup)
	res := NewProjector(DefaultOptions(), nil).Project(context.Background(), pageURL(t), doc.Elements)
	p := NewPainter(100, theme.DefaultDark)
	return p.Paint(doc.Title(), res.Nodes).PlainText(), p
}

func TestPaintDocument(t *testing.T) {
	out, p := paint(t, `<title>Demo</title><h1>Intro</h1><p>Some words here.</p>
<ul><li>First</li><li>Second</li></ul>
<a href="/next">Next page</a><a href="javascript:x()">Bad</a>
<input type="checkbox" checked="checked"><button>Go</button><hr><pre>x := 1</pre>`)

	assert.Contains(t, out, "Demo\n")
	assert.Contains(t, out, "1. INTRO")
	assert.Contains(t, out, "═")
	assert.Contains(t, out, "Some words here.")
	assert.Contains(t, out, "• First")
	assert.Contains(t, out, "• Second")
	assert.Contains(t, out, "Next page")
	assert.Contains(t, out, "[x] [input]")
	assert.Contains(t, out, "< Go >")
	assert.Contains(t, out, "x := 1")

	links := p.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com/next", links[0].URL)
	assert.Equal(t, len("Next page"), links[0].Length)
}

func TestPaintEmptyAndTruncated(t *testing.T) {
	out, _ := paint(t, "")
	assert.Contains(t, out, "No content")

	nodes := []Node{{Kind: KindElement, Category: html.CategoryParagraph, Text: "one"}, truncatedNode(1, 5)}
	got := NewPainter(60, nil).Paint("", nodes).PlainText()
	assert.Contains(t, got, "one")
	assert.Contains(t, got, "first 1 of 5")
}

func TestPaintImages(t *testing.T) {
	thumb := image.NewRGBA(image.Rect(0, 0, 4, 4))
	nodes := []Node{
		{Category: html.CategoryImage, Text: "[img]", Image: &Image{State: ImagePlaceholder}},
		{Category: html.CategoryImage, Text: "[image unavailable: x.png]", Image: &Image{State: ImageFailed}},
		{Category: html.CategoryImage, Text: "[img]", Image: &Image{State: ImageLoaded, Alt: "Logo", Width: 4, Height: 4, Thumbnail: thumb}},
	}
	c := NewPainter(60, nil).Paint("", nodes)
	out := c.PlainText()

	assert.Contains(t, out, "▢ [img]")
	assert.Contains(t, out, "[image unavailable: x.png]")
	assert.Contains(t, out, "▣ Logo (4x4)")
	assert.Equal(t, 2, strings.Count(out, "▀▀▀▀"))
}

func TestPaintTextInput(t *testing.T) {
	nodes := []Node{{Category: html.CategoryInput, Text: "[input]", Input: &Input{Kind: InputText, Placeholder: "Search"}}}
	out := NewPainter(60, nil).Paint("", nodes).PlainText()
	assert.Contains(t, out, "[Search___")
}
