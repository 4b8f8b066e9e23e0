package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webgu/cache"
	"webgu/document"
	"webgu/fetcher"
	"webgu/html"
	"webgu/security"
)

// DefaultPollInterval is how often a pending fetch is polled.
const DefaultPollInterval = 100 * time.Millisecond

// ErrInvalidURL is returned for addresses that cannot be parsed.
var ErrInvalidURL = errors.New("invalid URL")

// Progress milestones. Pending polls move from pollStart toward pollEnd.
const (
	progressStart = 0.1
	pollStart     = 0.2
	pollStep      = 0.05
	pollEnd       = 0.6
	progressScan  = 0.8
	progressDone  = 1.0
)

// Pipeline runs navigations for one browsing context. Only the most recent
// navigation may reach the shell or the cache; starting a new one cancels
// the previous one's context.
type Pipeline struct {
	fetcher   fetcher.Fetcher
	scanner   *html.Scanner
	projector *document.Projector
	cache     cache.Cache
	policy    *security.Policy
	shell     Shell
	logger    *zap.Logger
	metrics   *Metrics

	pollInterval time.Duration
	blocking     bool

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithScanner sets the scanner.
func WithScanner(s *html.Scanner) Option {
	return func(p *Pipeline) { p.scanner = s }
}

// WithProjector sets the projector.
func WithProjector(pr *document.Projector) Option {
	return func(p *Pipeline) { p.projector = pr }
}

// WithCache sets the page cache. A nil cache disables caching.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithPolicy sets the security policy.
func WithPolicy(pol *security.Policy) Option {
	return func(p *Pipeline) { p.policy = pol }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics records navigations in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithPollInterval sets how often a pending fetch is polled.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithBlockingFetch calls the fetcher inline instead of in the background.
// The result is treated as an already finished handle.
func WithBlockingFetch() Option {
	return func(p *Pipeline) { p.blocking = true }
}

// New creates a pipeline that fetches with f and reports to shell.
func New(f fetcher.Fetcher, shell Shell, opts ...Option) *Pipeline {
	if shell == nil {
		shell = NopShell{}
	}
	p := &Pipeline{
		fetcher:      f,
		shell:        shell,
		scanner:      html.NewScanner(html.DefaultOptions()),
		cache:        cache.NewMemory(cache.DefaultCapacity),
		policy:       security.NewPolicy(security.Config{BlockedDomains: security.DefaultBlockedDomains}),
		logger:       zap.NewNop(),
		pollInterval: DefaultPollInterval,
	}
	for _, o := range opts {
		o(p)
	}
	if p.projector == nil {
		p.projector = document.NewProjector(document.DefaultOptions(), nil, document.WithLogger(p.logger))
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p
}

// State returns the stage of the current navigation.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cancel abandons the current navigation, if any. It makes no shell calls.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.state = Idle
}

// NavigateOption adjusts a single navigation.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	reload bool
}

// WithReload skips the cache lookup. The fresh result is still cached.
func WithReload() NavigateOption {
	return func(o *navigateOptions) { o.reload = true }
}

// NormalizeURL parses a user-typed address. Addresses without a scheme are
// taken as https.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	u.Fragment, u.RawFragment = "", ""
	return u, nil
}

// Navigate loads rawURL and reports progress to the shell. It blocks until
// the navigation finishes, fails or is superseded by a later call, in which
// case it returns ErrSuperseded.
func (p *Pipeline) Navigate(ctx context.Context, rawURL string, opts ...NavigateOption) (*Page, error) {
	var no navigateOptions
	for _, o := range opts {
		o(&no)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	p.cancel = cancel
	p.state = Idle
	n := &navigation{p: p, gen: p.gen, start: time.Now()}
	p.mu.Unlock()

	page, err := n.run(ctx, rawURL, no)
	switch {
	case errors.Is(err, ErrSuperseded):
		p.metrics.Navigations.WithLabelValues("superseded").Inc()
	case err != nil:
		p.metrics.Navigations.WithLabelValues("failed").Inc()
	default:
		p.metrics.Navigations.WithLabelValues("done").Inc()
	}
	return page, err
}

// navigation is the state of one Navigate call.
type navigation struct {
	p        *Pipeline
	gen      uint64
	start    time.Time
	progress float64
}

// current runs f with the pipeline locked if this navigation has not been
// superseded, and reports whether it did.
func (n *navigation) current(f func()) bool {
	n.p.mu.Lock()
	defer n.p.mu.Unlock()
	if n.gen != n.p.gen {
		return false
	}
	f()
	return true
}

func (n *navigation) transition(s State) bool {
	ok := n.current(func() {
		n.p.state = s
		n.p.shell.OnStatus(s.String())
	})
	if ok {
		n.p.logger.Debug("pipeline state", zap.Stringer("state", s), zap.Uint64("generation", n.gen))
	}
	return ok
}

// advance reports progress, never moving backwards.
func (n *navigation) advance(f float64) bool {
	if f < n.progress {
		f = n.progress
	}
	n.progress = f
	return n.current(func() { n.p.shell.OnProgress(f) })
}

func (n *navigation) status(msg string) bool {
	return n.current(func() { n.p.shell.OnStatus(msg) })
}

func (n *navigation) fail(url string, err error) (*Page, error) {
	ok := n.current(func() {
		n.p.state = Failed
		n.p.shell.OnStatus(Failed.String())
		n.p.shell.OnError(UserMessage(url, err))
	})
	if !ok {
		return nil, ErrSuperseded
	}
	n.p.logger.Info("navigation failed", zap.String("url", url), zap.Error(err))
	return nil, err
}

func (n *navigation) run(ctx context.Context, rawURL string, opts navigateOptions) (*Page, error) {
	p := n.p

	u, err := NormalizeURL(rawURL)
	if err != nil {
		raw := strings.TrimSpace(rawURL)
		return n.fail(raw, &fetcher.FetchError{URL: raw, Err: err})
	}
	key := u.String()
	if err := p.policy.Allow(u); err != nil {
		return n.fail(key, &fetcher.FetchError{URL: key, Err: err})
	}

	page := &Page{ID: uuid.NewString(), URL: key}

	if !opts.reload {
		if entry, ok := n.lookup(ctx, key); ok {
			page.FromCache = true
			page.Elements = html.Filter(entry.Elements)
			page.ScanTruncated = entry.Truncated
			page.Title = entry.Title
			return n.render(ctx, u, page, entry.Markup, nil, false)
		}
	}

	if !n.transition(Fetching) || !n.advance(progressStart) {
		return nil, ErrSuperseded
	}

	began := time.Now()
	res, err := n.fetch(ctx, key)
	p.metrics.StageDuration.WithLabelValues("fetch").Observe(time.Since(began).Seconds())
	if err != nil {
		return n.fail(key, err)
	}

	final := u
	if res.URL != "" && res.URL != key {
		if fu, err := url.Parse(res.URL); err == nil {
			if err := p.policy.Allow(fu); err != nil {
				return n.fail(res.URL, &fetcher.FetchError{URL: res.URL, Err: err})
			}
			final = fu
		}
	}
	page.UsedBrowser = res.UsedBrowser

	if !n.transition(Scanning) || !n.advance(progressScan) {
		return nil, ErrSuperseded
	}

	began = time.Now()
	markup := p.policy.Sanitize(res.Markup)
	doc := p.scanner.Parse(markup)
	page.Elements = html.Filter(doc.Elements)
	page.ScanTruncated = doc.Truncated
	page.Title = doc.Title()
	p.metrics.StageDuration.WithLabelValues("scan").Observe(time.Since(began).Seconds())
	p.metrics.ElementsScanned.Observe(float64(len(page.Elements)))
	if doc.Truncated {
		p.metrics.Truncations.WithLabelValues("scan").Inc()
		p.logger.Debug("scan cap reached", zap.String("url", key), zap.Int("cap", p.scanner.MaxElements()))
	}

	return n.render(ctx, final, page, markup, res.Header, true)
}

// lookup reads the cache. Errors are logged and count as a miss.
func (n *navigation) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	p := n.p
	if p.cache == nil {
		return cache.Entry{}, false
	}
	entry, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache read failed", zap.String("url", key), zap.Error(err))
		ok = false
		if errors.Is(err, cache.ErrCorrupt) {
			if err := p.cache.Delete(ctx, key); err != nil {
				p.logger.Warn("dropping corrupt cache entry", zap.String("url", key), zap.Error(err))
			}
		}
	}
	if ok {
		p.metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		p.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return entry, ok
}

// fetch starts the fetch and polls it until it finishes. Each pending poll
// only moves the progress indicator.
func (n *navigation) fetch(ctx context.Context, url string) (*fetcher.Result, error) {
	p := n.p

	var h *fetcher.Handle
	if p.blocking {
		h = fetcher.Resolved(p.fetcher.Fetch(ctx, url))
	} else {
		h = fetcher.Start(ctx, p.fetcher, url)
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	progress := pollStart
	for h.Poll() == fetcher.StatusPending {
		select {
		case <-ctx.Done():
			h.Cancel()
			return nil, &fetcher.FetchError{URL: url, Err: ctx.Err()}
		case <-h.Done():
		case <-ticker.C:
			if !n.advance(progress) {
				h.Cancel()
				return nil, ErrSuperseded
			}
			progress = min(progress+pollStep, pollEnd)
		}
	}

	res, err := h.Result()
	if err != nil {
		var fe *fetcher.FetchError
		if !errors.As(err, &fe) {
			err = &fetcher.FetchError{URL: url, Err: err}
		}
		return nil, err
	}
	return res, nil
}

func (n *navigation) render(ctx context.Context, u *url.URL, page *Page, markup string, header http.Header, store bool) (*Page, error) {
	p := n.p
	if !n.transition(Rendering) {
		return nil, ErrSuperseded
	}

	began := time.Now()
	base := u
	meta, err := html.ReadMeta(markup)
	if err != nil {
		p.logger.Debug("reading page metadata", zap.String("url", page.URL), zap.Error(err))
	}
	if meta.BaseHref != "" {
		if ref, err := url.Parse(meta.BaseHref); err == nil {
			base = u.ResolveReference(ref)
		}
	}
	page.Description = meta.Description
	if page.Title == "" {
		page.Title = meta.Title
	}
	if page.Title == "" {
		page.Title = u.Hostname()
	}

	page.Security = security.Check(u, header)
	page.Render = p.projector.Project(ctx, base, page.Elements, document.AllowResource(page.Security.AllowsResource))
	p.metrics.StageDuration.WithLabelValues("render").Observe(time.Since(began).Seconds())
	p.metrics.NodesRendered.Observe(float64(page.Render.Rendered))

	if store && p.cache != nil {
		entry := cache.Entry{
			Markup:    markup,
			Elements:  page.Elements,
			Truncated: page.ScanTruncated,
			Title:     page.Title,
			StoredAt:  time.Now(),
		}
		var putErr error
		if !n.current(func() { putErr = p.cache.Put(ctx, page.URL, entry) }) {
			return nil, ErrSuperseded
		}
		if putErr != nil {
			p.logger.Warn("cache write failed", zap.String("url", page.URL), zap.Error(putErr))
		}
	}

	page.Took = time.Since(n.start)
	ok := n.current(func() {
		p.state = Done
		p.shell.OnRendered(page)
		p.shell.OnStatus(Done.String())
	})
	if !ok {
		return nil, ErrSuperseded
	}
	if page.Render.Truncated {
		p.metrics.Truncations.WithLabelValues("render").Inc()
		n.status(fmt.Sprintf("Showing first %d of %d elements", page.Render.Rendered, page.Render.Elements))
	}
	n.advance(progressDone)

	p.logger.Info("navigation done",
		zap.String("url", page.URL),
		zap.String("title", page.Title),
		zap.Int("elements", len(page.Elements)),
		zap.Int("nodes", len(page.Render.Nodes)),
		zap.Bool("cached", page.FromCache),
		zap.Duration("took", page.Took),
	)
	return page, nil
}
