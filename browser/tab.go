package browser

import (
	"context"
	"sync"

	"webgu/pipeline"
	"webgu/session"
)

// Tab is one browsing context.
type Tab struct {
	ID       string
	pipeline *pipeline.Pipeline

	mu      sync.Mutex
	current string
	back    []string
	forward []string
	page    *pipeline.Page
}

// tabShell remembers the last rendered page before passing events on.
type tabShell struct {
	tab  *Tab
	next pipeline.Shell
}

func (s *tabShell) OnProgress(f float64) { s.next.OnProgress(f) }
func (s *tabShell) OnStatus(msg string)  { s.next.OnStatus(msg) }
func (s *tabShell) OnError(msg string)   { s.next.OnError(msg) }

func (s *tabShell) OnRendered(p *pipeline.Page) {
	s.tab.mu.Lock()
	s.tab.page = p
	s.tab.mu.Unlock()
	s.next.OnRendered(p)
}

// URL returns the tab's current URL.
func (t *Tab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Page returns the last rendered page, or nil.
func (t *Tab) Page() *pipeline.Page {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// State returns the stage of the tab's navigation.
func (t *Tab) State() pipeline.State {
	return t.pipeline.State()
}

// CanGoBack reports whether Back has somewhere to go.
func (t *Tab) CanGoBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.back) > 0
}

// CanGoForward reports whether Forward has somewhere to go.
func (t *Tab) CanGoForward() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.forward) > 0
}

// Navigate loads url. On success the previous page goes on the back stack
// and the forward stack is cleared.
func (t *Tab) Navigate(ctx context.Context, url string) (*pipeline.Page, error) {
	page, err := t.pipeline.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != "" && t.current != page.URL {
		t.back = append(t.back, t.current)
	}
	t.current = page.URL
	t.forward = nil
	return page, nil
}

// Back returns to the previous page. It is usually served from the cache.
func (t *Tab) Back(ctx context.Context) (*pipeline.Page, error) {
	t.mu.Lock()
	if len(t.back) == 0 {
		t.mu.Unlock()
		return nil, ErrNoHistory
	}
	target := t.back[len(t.back)-1]
	t.mu.Unlock()

	page, err := t.pipeline.Navigate(ctx, target)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.back); n > 0 && t.back[n-1] == target {
		t.back = t.back[:n-1]
	}
	if t.current != "" {
		t.forward = append(t.forward, t.current)
	}
	t.current = page.URL
	return page, nil
}

// Forward undoes a Back.
func (t *Tab) Forward(ctx context.Context) (*pipeline.Page, error) {
	t.mu.Lock()
	if len(t.forward) == 0 {
		t.mu.Unlock()
		return nil, ErrNoHistory
	}
	target := t.forward[len(t.forward)-1]
	t.mu.Unlock()

	page, err := t.pipeline.Navigate(ctx, target)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.forward); n > 0 && t.forward[n-1] == target {
		t.forward = t.forward[:n-1]
	}
	if t.current != "" {
		t.back = append(t.back, t.current)
	}
	t.current = page.URL
	return page, nil
}

// Reload fetches the current page again, skipping the cache.
func (t *Tab) Reload(ctx context.Context) (*pipeline.Page, error) {
	url := t.URL()
	if url == "" {
		return nil, ErrNoHistory
	}
	return t.pipeline.Navigate(ctx, url, pipeline.WithReload())
}

// Cancel stops the tab's navigation.
func (t *Tab) Cancel() {
	t.pipeline.Cancel()
}

func (t *Tab) state() session.Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return session.Tab{
		URL:     t.current,
		Back:    append([]string(nil), t.back...),
		Forward: append([]string(nil), t.forward...),
	}
}
