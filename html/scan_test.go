package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerParse(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []Element
	}{
		{
			name:   "nested document",
			markup: `<html><body><h1>Title</h1><p>Hello <a href="http://x">link</a></p></body></html>`,
			want: []Element{
				{Tag: "h1", Text: "Title"},
				{Tag: "p", Text: "Hello"},
				{Tag: "a", Attrs: map[string]string{"href": "http://x"}, Text: "link"},
			},
		},
		{
			name:   "comment containing angle bracket",
			markup: `<!-- a > b --><p>Para</p>`,
			want:   []Element{{Tag: "p", Text: "Para"}},
		},
		{
			name:   "unterminated comment is skipped to the next bracket",
			markup: `<!-- note > <p>Hello world</p>`,
			want:   []Element{{Tag: "p", Text: "Hello world"}},
		},
		{
			name:   "script content is skipped",
			markup: `<script>if (a<b) { x = "<div>hi</div>" }</script><p>After</p>`,
			want:   []Element{{Tag: "p", Text: "After"}},
		},
		{
			name:   "style with uppercase close tag",
			markup: `<style>p { color: red }</STYLE><p>Styled</p>`,
			want:   []Element{{Tag: "p", Text: "Styled"}},
		},
		{
			name:   "longer close tag does not end a script",
			markup: `<script>var s = "</scripts>"; var t = "<p>no</p>"</script><p>After</p>`,
			want:   []Element{{Tag: "p", Text: "After"}},
		},
		{
			name:   "close tag with trailing space",
			markup: `<style>b { x: y }</style ><p>Styled</p>`,
			want:   []Element{{Tag: "p", Text: "Styled"}},
		},
		{
			name:   "unterminated script swallows the rest",
			markup: `<p>Before</p><script>var x = "<p>never</p>"`,
			want:   []Element{{Tag: "p", Text: "Before"}},
		},
		{
			name:   "emission gate",
			markup: `<div></div><section></section><span>x</span><strong>Bold text</strong>`,
			want: []Element{
				{Tag: "div"},
				{Tag: "span"},
				{Tag: "strong", Text: "Bold text"},
			},
		},
		{
			name:   "uppercase tag is lowercased",
			markup: `<DIV CLASS="a">Hello</DIV>`,
			want:   []Element{{Tag: "div", Attrs: map[string]string{"class": "a"}, Text: "Hello"}},
		},
		{
			name:   "self closing image",
			markup: `<img src="a.png"/>`,
			want:   []Element{{Tag: "img", Attrs: map[string]string{"src": "a.png"}}},
		},
		{
			name:   "data-src is not src",
			markup: `<img data-src="lazy.png" src="real.png">`,
			want: []Element{{Tag: "img", Attrs: map[string]string{
				"data-src": "lazy.png",
				"src":      "real.png",
			}}},
		},
		{
			name:   "newline separates tag name",
			markup: "<a\nhref=\"/x\">Go</a>",
			want:   []Element{{Tag: "a", Attrs: map[string]string{"href": "/x"}, Text: "Go"}},
		},
		{
			name:   "doctype and title",
			markup: `<!DOCTYPE html><title>Page</title>`,
			want:   []Element{{Tag: "title", Text: "Page"}},
		},
		{
			name:   "noise tags with text are dropped",
			markup: `<head><meta charset="utf-8"><link rel="x"></head><noscript>enable js</noscript><li>One</li>`,
			want:   []Element{{Tag: "li", Text: "One"}},
		},
		{
			name:   "stray less-than in text",
			markup: `<p>a < b</p>`,
			want:   []Element{{Tag: "p"}},
		},
		{
			name:   "unterminated tag ends the scan",
			markup: `<p>ok</p><div class="x"`,
			want:   []Element{{Tag: "p", Text: "ok"}},
		},
	}

	s := NewScanner(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := s.Parse(tt.markup)
			assert.Equal(t, tt.want, doc.Elements)
			assert.False(t, doc.Truncated)
		})
	}
}

func TestScannerEmpty(t *testing.T) {
	s := NewScanner(Options{})
	for _, markup := range []string{"", "   ", "just text", "<", "</p></div>", "<!-- only a comment -->", `<div class="x"`} {
		doc := s.Parse(markup)
		assert.True(t, doc.Empty(), "markup %q", markup)
		assert.Zero(t, doc.Len())
	}
}

func TestScannerIdempotent(t *testing.T) {
	markup := `<title>T</title><h1>Head</h1><script>x()</script><p>One <a href="/a">two</a></p><img src="i.png">`
	s := NewScanner(DefaultOptions())

	first := s.Parse(markup)
	second := s.Parse(markup)
	require.Len(t, first.Elements, 5)
	assert.Equal(t, first, second)

	collect := func() []Element {
		var out []Element
		for el := range s.Elements(markup) {
			out = append(out, el)
		}
		return out
	}
	assert.Equal(t, first.Elements, collect())
	assert.Equal(t, collect(), collect())
}

func TestScannerCap(t *testing.T) {
	s := NewScanner(Options{MaxElements: 500})
	require.Equal(t, 500, s.MaxElements())

	over := strings.Repeat("<p>item</p>", 600)
	doc := s.Parse(over)
	assert.Len(t, doc.Elements, 500)
	assert.True(t, doc.Truncated)

	exact := strings.Repeat("<p>item</p>", 500)
	doc = s.Parse(exact)
	assert.Len(t, doc.Elements, 500)
	assert.False(t, doc.Truncated)

	var n int
	for range s.Elements(over) {
		n++
	}
	assert.Equal(t, 500, n)
}

func TestScannerDefaultCap(t *testing.T) {
	assert.Equal(t, DefaultMaxElements, NewScanner(Options{MaxElements: -1}).MaxElements())
}

func TestElementsIsLazy(t *testing.T) {
	s := NewScanner(DefaultOptions())
	markup := `<h1>First</h1><h2>Second</h2><h3>Third</h3>`

	var got []string
	for el := range s.Elements(markup) {
		got = append(got, el.Tag)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"h1", "h2"}, got)

	// A second iteration starts over.
	var again []string
	for el := range s.Elements(markup) {
		again = append(again, el.Tag)
	}
	assert.Equal(t, []string{"h1", "h2", "h3"}, again)
}

func TestDocumentTitle(t *testing.T) {
	doc := NewScanner(DefaultOptions()).Parse(`<title>My Page</title><h1>Heading</h1>`)
	assert.Equal(t, "My Page", doc.Title())

	var nilDoc *Document
	assert.Equal(t, "", nilDoc.Title())
	assert.True(t, nilDoc.Empty())
}

func TestElementAccessors(t *testing.T) {
	el := Element{Tag: "input", Attrs: map[string]string{"type": "checkbox", "disabled": ""}}
	assert.Equal(t, "checkbox", el.Attr("type"))
	assert.Equal(t, "", el.Attr("name"))
	assert.True(t, el.HasAttr("disabled"))
	assert.False(t, el.HasAttr("name"))
	assert.Equal(t, CategoryInput, el.Category())
}
