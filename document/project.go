// Package document turns scanned elements into render nodes and paints them
// to the terminal.
package document

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	nethtml "golang.org/x/net/html"
	"go.uber.org/zap"

	"webgu/html"
	"webgu/security"
	"webgu/theme"
)

// DefaultMaxNodes is the render cap.
const DefaultMaxNodes = 100

// ImageFetcher loads image bytes for image nodes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Projector.
type Options struct {
	MaxNodes int
	// ThumbnailWidth is the width in pixels of decoded thumbnails; zero
	// disables thumbnails.
	ThumbnailWidth   int
	ImageConcurrency int
}

// DefaultOptions returns the projector defaults.
func DefaultOptions() Options {
	return Options{MaxNodes: DefaultMaxNodes, ThumbnailWidth: 64, ImageConcurrency: 4}
}

// Projector maps elements to render nodes. It is safe for concurrent use.
type Projector struct {
	opts   Options
	styles *theme.Resolver
	images ImageFetcher
	logger *zap.Logger
}

// Option customises a Projector.
type Option func(*Projector)

// WithImageFetcher enables image loading.
func WithImageFetcher(f ImageFetcher) Option {
	return func(p *Projector) { p.images = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Projector) { p.logger = l }
}

// NewProjector creates a projector. A nil resolver uses the default styles.
func NewProjector(opts Options, styles *theme.Resolver, options ...Option) *Projector {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.ImageConcurrency <= 0 {
		opts.ImageConcurrency = 1
	}
	if styles == nil {
		styles = theme.NewResolver(theme.Config{})
	}
	p := &Projector{opts: opts, styles: styles, logger: zap.NewNop()}
	for _, o := range options {
		o(p)
	}
	return p
}

// MaxNodes returns the render cap.
func (p *Projector) MaxNodes() int {
	return p.opts.MaxNodes
}

// ProjectOption adjusts a single projection.
type ProjectOption func(*projection)

type projection struct {
	allowResource func(string) bool
}

// AllowResource restricts which image URLs are fetched for this page.
func AllowResource(allow func(resource string) bool) ProjectOption {
	return func(pr *projection) { pr.allowResource = allow }
}

// Project produces the nodes for elements, in order. page is the URL the
// elements came from and resolves relative links; it may be nil. Image
// failures degrade to caption nodes and never fail the projection.
func (p *Projector) Project(ctx context.Context, page *url.URL, elements []html.Element, opts ...ProjectOption) *Result {
	pr := projection{allowResource: func(string) bool { return true }}
	for _, o := range opts {
		o(&pr)
	}

	res := &Result{Elements: len(elements)}
	if len(elements) == 0 {
		res.Nodes = []Node{emptyNode()}
		return res
	}

	n := min(len(elements), p.opts.MaxNodes)
	res.Nodes = make([]Node, 0, n+1)
	for _, el := range elements[:n] {
		res.Nodes = append(res.Nodes, p.node(page, el, pr))
	}
	res.Rendered = n

	if len(elements) > n {
		res.Truncated = true
		res.Nodes = append(res.Nodes, truncatedNode(n, len(elements)))
	}

	p.loadImages(ctx, res)
	return res
}

func emptyNode() Node {
	return Node{Kind: KindEmpty, Text: "No content"}
}

func truncatedNode(shown, total int) Node {
	return Node{
		Kind: KindTruncated,
		Text: fmt.Sprintf("... showing only the first %d of %d elements ...", shown, total),
	}
}

// DisplayText is the element's text with entities decoded, or "[tag]" when
// the element has no text.
func DisplayText(el html.Element) string {
	if el.Text == "" {
		return "[" + el.Tag + "]"
	}
	return nethtml.UnescapeString(el.Text)
}

func (p *Projector) node(page *url.URL, el html.Element, pr projection) Node {
	n := Node{
		Kind:     KindElement,
		Category: el.Category(),
		Tag:      el.Tag,
		Text:     DisplayText(el),
		Hints:    p.styles.Resolve(el.Tag),
	}

	switch n.Category {
	case html.CategoryLink:
		n.Link = projectLink(page, el.Attr("href"))
		n.Attrs = pick(el, "href")
	case html.CategoryImage:
		n.Image = p.projectImage(page, el, pr)
		n.Attrs = pick(el, "src")
		if n.Image.State == ImageFailed {
			n.Text = failureCaption(n.Image)
		}
	case html.CategoryInput:
		n.Input = projectInput(el)
		n.Attrs = pick(el, "type")
	}
	return n
}

func pick(el html.Element, name string) map[string]string {
	if !el.HasAttr(name) {
		return nil
	}
	return map[string]string{name: el.Attr(name)}
}

func resolve(page *url.URL, ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if page != nil {
		u = page.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("relative reference %q without a base", ref)
	}
	return u, nil
}

func projectLink(page *url.URL, href string) *Link {
	l := &Link{Href: href}
	if href == "" || !security.SafeHref(href) {
		return l
	}
	if u, err := resolve(page, href); err == nil {
		l.URL = u.String()
		l.Navigable = true
	}
	return l
}

func (p *Projector) projectImage(page *url.URL, el html.Element, pr projection) *Image {
	img := &Image{Src: el.Attr("src"), Alt: nethtml.UnescapeString(el.Attr("alt"))}
	if img.Src == "" {
		return img
	}

	u, err := resolve(page, img.Src)
	if err != nil || !security.SafeHref(img.Src) {
		img.State = ImageFailed
		return img
	}
	img.URL = u.String()
	if !pr.allowResource(img.URL) {
		img.State = ImageFailed
		return img
	}
	img.State = ImagePending
	return img
}

func projectInput(el html.Element) *Input {
	in := &Input{
		Name:        el.Attr("name"),
		Value:       el.Attr("value"),
		Placeholder: el.Attr("placeholder"),
		Checked:     el.HasAttr("checked"),
	}
	switch strings.ToLower(strings.TrimSpace(el.Attr("type"))) {
	case "submit", "reset", "button", "image":
		in.Kind = InputButton
	case "checkbox":
		in.Kind = InputCheckbox
	case "radio":
		in.Kind = InputRadio
	default:
		in.Kind = InputText
	}
	return in
}
