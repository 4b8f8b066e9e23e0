package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := map[string]Category{
		"div":        CategoryContainer,
		"h1":         CategoryHeading,
		"H2":         CategoryHeading,
		"title":      CategoryHeading,
		"p":          CategoryParagraph,
		"a":          CategoryLink,
		"img":        CategoryImage,
		"span":       CategoryTextSpan,
		"ul":         CategoryList,
		"li":         CategoryListItem,
		"table":      CategoryTable,
		"tr":         CategoryTableRow,
		"th":         CategoryTableCellHeader,
		"td":         CategoryTableCellData,
		"form":       CategoryForm,
		"input":      CategoryInput,
		"button":     CategoryButton,
		"br":         CategoryLineBreak,
		"hr":         CategoryRule,
		"pre":        CategoryCodeBlock,
		"blockquote": CategoryQuote,
		"marquee":    CategoryUnknown,
		"x-widget":   CategoryUnknown,
		"":           CategoryUnknown,
	}
	for tag, want := range tests {
		assert.Equal(t, want, Classify(tag), "tag %q", tag)
	}
}

func TestEmitsAlways(t *testing.T) {
	for _, tag := range []string{"a", "img", "button", "input", "h1", "h2", "h3", "p", "div", "span", "li", "td", "th", "title"} {
		assert.True(t, EmitsAlways(tag), tag)
	}
	for _, tag := range []string{"h4", "section", "strong", "ul", "table", "tr", "br", "custom"} {
		assert.False(t, EmitsAlways(tag), tag)
	}
}

func TestIsNoise(t *testing.T) {
	for _, tag := range []string{"head", "script", "style", "meta", "link", "noscript", "SCRIPT"} {
		assert.True(t, IsNoise(tag), tag)
	}
	assert.False(t, IsNoise("p"))
	assert.False(t, IsNoise("a"))
}

func TestFilter(t *testing.T) {
	in := []Element{
		{Tag: "h1", Text: "Top"},
		{Tag: "script", Text: "alert(1)"},
		{Tag: ""},
		{Tag: "p", Text: "Body"},
		{Tag: "meta"},
	}
	assert.Equal(t, []Element{{Tag: "h1", Text: "Top"}, {Tag: "p", Text: "Body"}}, Filter(in))
	assert.Empty(t, Filter(nil))
}

func TestCategoryText(t *testing.T) {
	for _, c := range Categories() {
		b, err := c.MarshalText()
		assert.NoError(t, err)

		var back Category
		assert.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
	assert.Equal(t, "table-cell-header", CategoryTableCellHeader.String())
	assert.Equal(t, "unknown", Category(99).String())
	assert.Equal(t, CategoryUnknown, ParseCategory("nope"))
}
