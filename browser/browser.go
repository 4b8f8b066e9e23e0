// Package browser manages tabs. Each tab owns a pipeline and a history of
// visited URLs.
package browser

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webgu/pipeline"
	"webgu/session"
)

var (
	// ErrNoTab is returned for an unknown tab ID.
	ErrNoTab = errors.New("no such tab")
	// ErrLastTab is returned when closing the only open tab.
	ErrLastTab = errors.New("cannot close the last tab")
	// ErrNoHistory is returned by Back and Forward at either end of history.
	ErrNoHistory = errors.New("no history in that direction")
)

// PipelineFactory builds the pipeline for a new tab, reporting to shell.
type PipelineFactory func(shell pipeline.Shell) *pipeline.Pipeline

// ShellFactory returns the shell for a tab.
type ShellFactory func(tabID string) pipeline.Shell

// Browser is a set of tabs, one of which is active.
type Browser struct {
	newPipeline PipelineFactory
	newShell    ShellFactory
	logger      *zap.Logger

	mu     sync.Mutex
	tabs   []*Tab
	active int
}

// Option customises a Browser.
type Option func(*Browser)

// WithShell sets the per-tab shell factory.
func WithShell(f ShellFactory) Option {
	return func(b *Browser) { b.newShell = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

// New creates a browser with one empty tab.
func New(factory PipelineFactory, opts ...Option) *Browser {
	b := &Browser{
		newPipeline: factory,
		newShell:    func(string) pipeline.Shell { return pipeline.NopShell{} },
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	b.tabs = []*Tab{b.makeTab()}
	return b
}

func (b *Browser) makeTab() *Tab {
	id := uuid.NewString()
	t := &Tab{ID: id}
	t.pipeline = b.newPipeline(&tabShell{tab: t, next: b.newShell(id)})
	return t
}

// NewTab opens an empty tab and makes it active.
func (b *Browser) NewTab() *Tab {
	t := b.makeTab()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabs = append(b.tabs, t)
	b.active = len(b.tabs) - 1
	b.logger.Debug("tab opened", zap.String("tab", t.ID), zap.Int("tabs", len(b.tabs)))
	return t
}

// CloseTab closes the tab and cancels its navigation. The last tab cannot
// be closed.
func (b *Browser) CloseTab(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return ErrNoTab
	}
	if len(b.tabs) == 1 {
		return ErrLastTab
	}

	b.tabs[i].pipeline.Cancel()
	b.tabs = slices.Delete(b.tabs, i, i+1)
	if b.active > i || b.active == len(b.tabs) {
		b.active--
	}
	b.logger.Debug("tab closed", zap.String("tab", id), zap.Int("tabs", len(b.tabs)))
	return nil
}

// Switch makes the tab active.
func (b *Browser) Switch(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return ErrNoTab
	}
	b.active = i
	return nil
}

// Active returns the active tab.
func (b *Browser) Active() *Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tabs[b.active]
}

// Tab returns the tab with the given ID.
func (b *Browser) Tab(id string) (*Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return nil, ErrNoTab
	}
	return b.tabs[i], nil
}

// Tabs returns the open tabs in order.
func (b *Browser) Tabs() []*Tab {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tabs)
}

func (b *Browser) index(id string) int {
	return slices.IndexFunc(b.tabs, func(t *Tab) bool { return t.ID == id })
}

// Snapshot captures the open tabs for saving.
func (b *Browser) Snapshot() *session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &session.Session{Active: b.active}
	for _, t := range b.tabs {
		s.Tabs = append(s.Tabs, t.state())
	}
	return s
}

// Restore replaces the open tabs with the saved ones. Tabs get their
// history back but nothing is loaded until the caller navigates.
func (b *Browser) Restore(s *session.Session) {
	if s == nil || len(s.Tabs) == 0 {
		return
	}

	tabs := make([]*Tab, 0, len(s.Tabs))
	for _, st := range s.Tabs {
		t := b.makeTab()
		t.current = st.URL
		t.back = slices.Clone(st.Back)
		t.forward = slices.Clone(st.Forward)
		tabs = append(tabs, t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tabs {
		t.pipeline.Cancel()
	}
	b.tabs = tabs
	b.active = 0
	if s.Active >= 0 && s.Active < len(tabs) {
		b.active = s.Active
	}
}

// Navigate loads url in the active tab.
func (b *Browser) Navigate(ctx context.Context, url string) (*pipeline.Page, error) {
	return b.Active().Navigate(ctx, url)
}
