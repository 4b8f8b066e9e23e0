package html

import (
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/atom"
)

// DefaultMaxElements bounds a single scan.
const DefaultMaxElements = 500

// Options configures a Scanner.
type Options struct {
	// MaxElements stops the scan once this many elements were emitted.
	MaxElements int
}

// DefaultOptions returns the scanner defaults.
func DefaultOptions() Options {
	return Options{MaxElements: DefaultMaxElements}
}

// Scanner turns markup into elements. It holds no per-scan state and is safe
// for concurrent use.
type Scanner struct {
	opts Options
}

// NewScanner creates a scanner. A non-positive cap uses DefaultMaxElements.
func NewScanner(opts Options) *Scanner {
	if opts.MaxElements <= 0 {
		opts.MaxElements = DefaultMaxElements
	}
	return &Scanner{opts: opts}
}

// MaxElements returns the scan cap.
func (s *Scanner) MaxElements() int {
	return s.opts.MaxElements
}

// Elements returns a lazy sequence of the elements in markup, in document
// order. Each call starts a fresh scan.
func (s *Scanner) Elements(markup string) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		c := cursor{src: markup}
		for n := 0; n < s.opts.MaxElements; n++ {
			el, ok := c.next()
			if !ok || !yield(el) {
				return
			}
		}
	}
}

// Parse scans markup into a Document. Malformed markup never fails the scan;
// the worst case is an empty document.
func (s *Scanner) Parse(markup string) *Document {
	doc := &Document{}
	c := cursor{src: markup}
	for len(doc.Elements) < s.opts.MaxElements {
		el, ok := c.next()
		if !ok {
			return doc
		}
		doc.Elements = append(doc.Elements, el)
	}
	_, more := c.next()
	doc.Truncated = more
	return doc
}

// cursor walks the markup left to right. It only moves forward, so a scan is
// linear in the size of the input.
type cursor struct {
	src string
	pos int
}

func (c *cursor) next() (Element, bool) {
	for c.pos < len(c.src) {
		start := strings.IndexByte(c.src[c.pos:], '<')
		if start < 0 {
			c.pos = len(c.src)
			return Element{}, false
		}
		start += c.pos

		// An unterminated comment is skipped like any other "<!" body, up to
		// the next '>'.
		if strings.HasPrefix(c.src[start:], "<!--") {
			if end := strings.Index(c.src[start+4:], "-->"); end >= 0 {
				c.pos = start + 4 + end + 3
				continue
			}
		}

		end := strings.IndexByte(c.src[start+1:], '>')
		if end < 0 {
			c.pos = len(c.src)
			return Element{}, false
		}
		end += start + 1
		body := c.src[start+1 : end]
		c.pos = end + 1

		if body == "" || body[0] == '!' || body[0] == '/' || body[0] == '?' {
			continue
		}
		if !isASCIILetter(body[0]) {
			continue
		}

		name, rest := splitTagBody(body)
		a := atom.Lookup([]byte(name))
		if noiseTags[a] {
			if rawTextTags[a] && !strings.HasSuffix(body, "/") {
				c.skipRawText(name)
			}
			continue
		}

		text := followingText(c.src, c.pos)
		if text == "" && !tagTable[a].emitAlways {
			continue
		}
		return Element{Tag: name, Attrs: ParseAttributes(rest), Text: text}, true
	}
	return Element{}, false
}

// skipRawText moves past the close tag of a script-like element. An
// unterminated element swallows the rest of the input.
func (c *cursor) skipRawText(name string) {
	for {
		i := strings.Index(c.src[c.pos:], "</")
		if i < 0 {
			c.pos = len(c.src)
			return
		}
		at := c.pos + i + 2
		if closesRawText(c.src[at:], name) {
			end := strings.IndexByte(c.src[at:], '>')
			if end < 0 {
				c.pos = len(c.src)
				return
			}
			c.pos = at + end + 1
			return
		}
		c.pos = at
	}
}

// closesRawText reports whether s, the text after a "</", names the element
// name. </scripts> does not close a script.
func closesRawText(s, name string) bool {
	if len(s) < len(name) || !strings.EqualFold(s[:len(name)], name) {
		return false
	}
	if len(s) == len(name) {
		return true
	}
	switch s[len(name)] {
	case '>', '/', ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// splitTagBody splits a raw tag body at the first whitespace into a lowercase
// tag name and the attribute part.
func splitTagBody(body string) (name, rest string) {
	name = body
	if i := strings.IndexAny(body, " \t\n\r\f"); i >= 0 {
		name, rest = body[:i], body[i+1:]
	}
	name = strings.TrimSuffix(name, "/")
	return strings.ToLower(name), rest
}

// followingText returns the trimmed character data between pos and the next
// '<'. Text of a single character or less counts as empty.
func followingText(src string, pos int) string {
	if pos >= len(src) {
		return ""
	}
	rest := src[pos:]
	if i := strings.IndexByte(rest, '<'); i >= 0 {
		rest = rest[:i]
	}
	text := strings.TrimSpace(rest)
	if utf8.RuneCountInString(text) <= 1 {
		return ""
	}
	return text
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
