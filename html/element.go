// Package html extracts a flat, ordered sequence of elements from raw markup.
//
// The scanner does not build a tree. Each recognised opening tag becomes one
// Element holding its lowercase name, its quoted attributes and the text that
// immediately follows it. Nesting is not reconstructed.
package html

// Element is one opening tag, its attributes and the text that follows it.
// Elements are values; the maps they hold must be treated as read-only.
type Element struct {
	Tag   string            `json:"tag"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Text  string            `json:"text,omitempty"`
}

// Attr returns the named attribute or "".
func (e Element) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr reports whether the attribute was present, even if empty.
func (e Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// Category returns the render category of the element's tag.
func (e Element) Category() Category {
	return Classify(e.Tag)
}

// Document is the result of one scan.
type Document struct {
	Elements []Element `json:"elements"`
	// Truncated is set when the element cap stopped the scan with markup left over.
	Truncated bool `json:"truncated,omitempty"`
}

// Empty reports whether the scan found nothing worth rendering.
func (d *Document) Empty() bool {
	return d == nil || len(d.Elements) == 0
}

// Len returns the number of elements.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Elements)
}

// Title returns the text of the first title element, if any.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	for _, el := range d.Elements {
		if el.Tag == "title" {
			return el.Text
		}
	}
	return ""
}
