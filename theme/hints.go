package theme

import (
	"fmt"
	"math"
	"strings"

	"webgu/html"
)

// Spacing is a margin in layout units. Units are pixel-like; painters
// convert them to their own grid.
type Spacing struct {
	Top    int `toml:"top" json:"top,omitempty"`
	Right  int `toml:"right" json:"right,omitempty"`
	Bottom int `toml:"bottom" json:"bottom,omitempty"`
	Left   int `toml:"left" json:"left,omitempty"`
}

func (s Spacing) scale(f float64) Spacing {
	r := func(v int) int { return int(math.Round(float64(v) * f)) }
	return Spacing{Top: r(s.Top), Right: r(s.Right), Bottom: r(s.Bottom), Left: r(s.Left)}
}

// Wrap selects how long text is broken into lines.
type Wrap int

const (
	WrapWord Wrap = iota
	WrapChar
)

func (w Wrap) String() string {
	if w == WrapChar {
		return "char"
	}
	return "word"
}

func (w Wrap) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Wrap) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "word":
		*w = WrapWord
	case "char":
		*w = WrapChar
	default:
		return fmt.Errorf("unknown wrap mode %q", b)
	}
	return nil
}

// Hints are the presentation properties of one render node.
type Hints struct {
	Margin    Spacing `toml:"margin" json:"margin"`
	Bold      bool    `toml:"bold" json:"bold,omitempty"`
	Italic    bool    `toml:"italic" json:"italic,omitempty"`
	Underline bool    `toml:"underline" json:"underline,omitempty"`
	Monospace bool    `toml:"monospace" json:"monospace,omitempty"`
	Dim       bool    `toml:"dim" json:"dim,omitempty"`
	Uppercase bool    `toml:"uppercase" json:"uppercase,omitempty"`
	Wrap      Wrap    `toml:"wrap" json:"wrap"`
}

// Config is the process-wide style configuration.
type Config struct {
	// Scale multiplies every margin. Zero means 1.
	Scale float64 `toml:"scale"`
	// Overrides replace the whole row for a tag.
	Overrides map[string]Hints `toml:"overrides" ignored:"true"`
}

func margin(left, right, top, bottom int) Spacing {
	return Spacing{Top: top, Right: right, Bottom: bottom, Left: left}
}

// tagRows are checked first; h1 and h2/h3 deliberately differ.
var tagRows = map[string]Hints{
	"h1":         {Margin: margin(10, 10, 15, 10), Bold: true, Uppercase: true},
	"h2":         {Margin: margin(15, 15, 10, 5), Bold: true},
	"h3":         {Margin: margin(15, 15, 10, 5), Bold: true},
	"p":          {Margin: margin(20, 20, 5, 5)},
	"a":          {Margin: margin(20, 20, 0, 0), Underline: true},
	"img":        {Margin: margin(20, 20, 10, 10), Dim: true},
	"ul":         {Margin: margin(30, 20, 5, 5)},
	"ol":         {Margin: margin(30, 20, 5, 5)},
	"li":         {Margin: margin(10, 10, 2, 2)},
	"table":      {Margin: margin(20, 20, 10, 10)},
	"form":       {Margin: margin(20, 20, 15, 15)},
	"input":      {Margin: margin(20, 20, 5, 5)},
	"textarea":   {Margin: margin(20, 20, 5, 5)},
	"select":     {Margin: margin(20, 20, 5, 5)},
	"button":     {Margin: margin(20, 20, 10, 10), Bold: true},
	"blockquote": {Margin: margin(30, 20, 10, 10), Italic: true},
	"pre":        {Margin: margin(20, 20, 5, 5), Monospace: true, Wrap: WrapChar},
	"code":       {Monospace: true, Wrap: WrapChar},
	"strong":     {Bold: true},
	"b":          {Bold: true},
	"em":         {Italic: true},
	"i":          {Italic: true},
	"u":          {Underline: true},
	"th":         {Bold: true},
}

var categoryRows = map[html.Category]Hints{
	html.CategoryHeading:         {Margin: margin(15, 15, 10, 5), Bold: true},
	html.CategoryParagraph:       {Margin: margin(20, 20, 5, 5)},
	html.CategoryLink:            {Margin: margin(20, 20, 0, 0), Underline: true},
	html.CategoryImage:           {Margin: margin(20, 20, 10, 10), Dim: true},
	html.CategoryList:            {Margin: margin(30, 20, 5, 5)},
	html.CategoryListItem:        {Margin: margin(10, 10, 2, 2)},
	html.CategoryTable:           {Margin: margin(20, 20, 10, 10)},
	html.CategoryTableCellHeader: {Bold: true},
	html.CategoryForm:            {Margin: margin(20, 20, 15, 15)},
	html.CategoryInput:           {Margin: margin(20, 20, 5, 5)},
	html.CategoryButton:          {Margin: margin(20, 20, 10, 10), Bold: true},
	html.CategoryRule:            {Margin: margin(0, 0, 5, 5)},
	html.CategoryCodeBlock:       {Margin: margin(20, 20, 5, 5), Monospace: true, Wrap: WrapChar},
	html.CategoryQuote:           {Margin: margin(30, 20, 10, 10), Italic: true},
}

// Resolver maps tags to hints. It is immutable after construction and safe
// for concurrent use.
type Resolver struct {
	tags       map[string]Hints
	categories map[html.Category]Hints
}

// NewResolver builds a resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}

	r := &Resolver{
		tags:       make(map[string]Hints, len(tagRows)+len(cfg.Overrides)),
		categories: make(map[html.Category]Hints, len(categoryRows)),
	}
	for tag, h := range tagRows {
		h.Margin = h.Margin.scale(scale)
		r.tags[tag] = h
	}
	for tag, h := range cfg.Overrides {
		h.Margin = h.Margin.scale(scale)
		r.tags[strings.ToLower(tag)] = h
	}
	for c, h := range categoryRows {
		h.Margin = h.Margin.scale(scale)
		r.categories[c] = h
	}
	return r
}

// Resolve returns the hints for a tag: its own row, else its category's row,
// else the default. It never fails.
func (r *Resolver) Resolve(tag string) Hints {
	if h, ok := r.tags[strings.ToLower(tag)]; ok {
		return h
	}
	return r.ForCategory(html.Classify(tag))
}

// ForCategory returns the hints shared by every tag of a category.
func (r *Resolver) ForCategory(c html.Category) Hints {
	return r.categories[c]
}
