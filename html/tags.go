package html

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// Category classifies a tag for rendering.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryContainer
	CategoryHeading
	CategoryParagraph
	CategoryLink
	CategoryImage
	CategoryTextSpan
	CategoryList
	CategoryListItem
	CategoryTable
	CategoryTableRow
	CategoryTableCellHeader
	CategoryTableCellData
	CategoryForm
	CategoryInput
	CategoryButton
	CategoryLineBreak
	CategoryRule
	CategoryCodeBlock
	CategoryQuote
)

var categoryNames = [...]string{
	CategoryUnknown:         "unknown",
	CategoryContainer:       "container",
	CategoryHeading:         "heading",
	CategoryParagraph:       "paragraph",
	CategoryLink:            "link",
	CategoryImage:           "image",
	CategoryTextSpan:        "text-span",
	CategoryList:            "list",
	CategoryListItem:        "list-item",
	CategoryTable:           "table",
	CategoryTableRow:        "table-row",
	CategoryTableCellHeader: "table-cell-header",
	CategoryTableCellData:   "table-cell-data",
	CategoryForm:            "form",
	CategoryInput:           "input",
	CategoryButton:          "button",
	CategoryLineBreak:       "line-break",
	CategoryRule:            "rule",
	CategoryCodeBlock:       "code-block",
	CategoryQuote:           "quote",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryUnknown]
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name. Unrecognised names become CategoryUnknown.
func (c *Category) UnmarshalText(b []byte) error {
	*c = ParseCategory(string(b))
	return nil
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) Category {
	for i, n := range categoryNames {
		if n == name {
			return Category(i)
		}
	}
	return CategoryUnknown
}

// tagInfo is one row of the tag table.
type tagInfo struct {
	category   Category
	emitAlways bool
}

// tagTable is the only place tags are mapped to categories. The scanner's
// emission gate and the projector's classification both read it.
var tagTable = map[atom.Atom]tagInfo{
	atom.Html:       {CategoryContainer, false},
	atom.Body:       {CategoryContainer, false},
	atom.Div:        {CategoryContainer, true},
	atom.Section:    {CategoryContainer, false},
	atom.Article:    {CategoryContainer, false},
	atom.Main:       {CategoryContainer, false},
	atom.Header:     {CategoryContainer, false},
	atom.Footer:     {CategoryContainer, false},
	atom.Nav:        {CategoryContainer, false},
	atom.Aside:      {CategoryContainer, false},
	atom.Title:      {CategoryHeading, true},
	atom.H1:         {CategoryHeading, true},
	atom.H2:         {CategoryHeading, true},
	atom.H3:         {CategoryHeading, true},
	atom.H4:         {CategoryHeading, false},
	atom.H5:         {CategoryHeading, false},
	atom.H6:         {CategoryHeading, false},
	atom.P:          {CategoryParagraph, true},
	atom.A:          {CategoryLink, true},
	atom.Img:        {CategoryImage, true},
	atom.Span:       {CategoryTextSpan, true},
	atom.Strong:     {CategoryTextSpan, false},
	atom.B:          {CategoryTextSpan, false},
	atom.Em:         {CategoryTextSpan, false},
	atom.I:          {CategoryTextSpan, false},
	atom.U:          {CategoryTextSpan, false},
	atom.Small:      {CategoryTextSpan, false},
	atom.Label:      {CategoryTextSpan, false},
	atom.Code:       {CategoryTextSpan, false},
	atom.Ul:         {CategoryList, false},
	atom.Ol:         {CategoryList, false},
	atom.Li:         {CategoryListItem, true},
	atom.Table:      {CategoryTable, false},
	atom.Tr:         {CategoryTableRow, false},
	atom.Th:         {CategoryTableCellHeader, true},
	atom.Td:         {CategoryTableCellData, true},
	atom.Form:       {CategoryForm, false},
	atom.Input:      {CategoryInput, true},
	atom.Textarea:   {CategoryInput, false},
	atom.Button:     {CategoryButton, true},
	atom.Br:         {CategoryLineBreak, false},
	atom.Hr:         {CategoryRule, false},
	atom.Pre:        {CategoryCodeBlock, false},
	atom.Blockquote: {CategoryQuote, false},
}

// noiseTags are dropped before emission regardless of content.
var noiseTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Noscript: true,
}

// rawTextTags hold content that is not markup; the scanner skips to their close tag.
var rawTextTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
}

func lookup(tag string) atom.Atom {
	return atom.Lookup([]byte(strings.ToLower(tag)))
}

// Classify maps a tag name to its render category.
func Classify(tag string) Category {
	if info, ok := tagTable[lookup(tag)]; ok {
		return info.category
	}
	return CategoryUnknown
}

// EmitsAlways reports whether a tag is surfaced even when it has no text.
func EmitsAlways(tag string) bool {
	return tagTable[lookup(tag)].emitAlways
}

// IsNoise reports whether a tag is metadata or otherwise non-visual.
func IsNoise(tag string) bool {
	return noiseTags[lookup(tag)]
}

// Filter returns the elements that are not noise, in their original order.
func Filter(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if el.Tag == "" || IsNoise(el.Tag) {
			continue
		}
		out = append(out, el)
	}
	return out
}
