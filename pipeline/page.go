package pipeline

import (
	"time"

	"webgu/document"
	"webgu/html"
	"webgu/security"
)

// Page is a finished navigation.
type Page struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Elements []html.Element  `json:"elements"`
	Render   *document.Result `json:"render"`

	// ScanTruncated is set when the scan cap cut the element sequence short.
	ScanTruncated bool          `json:"scan_truncated,omitempty"`
	Security      security.Info `json:"security"`

	FromCache   bool          `json:"from_cache,omitempty"`
	UsedBrowser bool          `json:"used_browser,omitempty"`
	Took        time.Duration `json:"took"`
}

// Nodes returns the render nodes.
func (p *Page) Nodes() []document.Node {
	if p == nil || p.Render == nil {
		return nil
	}
	return p.Render.Nodes
}
