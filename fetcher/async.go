package fetcher

import (
	"context"
	"sync"
)

// Status is the state of an asynchronous fetch.
type Status int

const (
	StatusPending Status = iota
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Handle tracks a fetch running in the background. Poll never blocks.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
	result *Result
	err    error
}

// Start runs f.Fetch(ctx, url) in a goroutine and returns immediately.
func Start(ctx context.Context, f Fetcher, url string) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer cancel()
		res, err := f.Fetch(ctx, url)
		h.finish(res, err)
	}()
	return h
}

// Resolved returns a handle that has already finished with res and err.
func Resolved(res *Result, err error) *Handle {
	h := &Handle{cancel: func() {}, done: make(chan struct{})}
	h.finish(res, err)
	return h
}

func (h *Handle) finish(res *Result, err error) {
	h.mu.Lock()
	if err == nil && res == nil {
		err = &FetchError{Err: context.Canceled}
	}
	if err != nil {
		h.status, h.err = StatusFailed, err
	} else {
		h.status, h.result = StatusDone, res
	}
	h.mu.Unlock()
	close(h.done)
}

// Poll returns the current status.
func (h *Handle) Poll() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Result returns the fetched page and error once the handle has finished.
// While pending it returns nil, nil.
func (h *Handle) Result() (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// Done is closed when the fetch finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cancel aborts the fetch. The handle still finishes, normally as failed.
func (h *Handle) Cancel() {
	h.cancel()
}
