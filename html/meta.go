package html

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Meta is page-level information the flat element sequence does not carry,
// because head and meta tags are noise to the scanner.
type Meta struct {
	Title       string `json:"title,omitempty"`
	BaseHref    string `json:"base_href,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReadMeta extracts the page title, base href and description.
func ReadMeta(markup string) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Meta{}, fmt.Errorf("reading page metadata: %w", err)
	}

	var m Meta
	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		m.BaseHref = strings.TrimSpace(href)
	}

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := strings.ToLower(s.AttrOr("name", s.AttrOr("property", "")))
		if name == "description" || name == "og:description" {
			m.Description = strings.TrimSpace(s.AttrOr("content", ""))
			return m.Description == ""
		}
		return true
	})

	if m.Title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
			m.Title = strings.TrimSpace(og)
		}
	}
	return m, nil
}
