package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTooLarge is returned when a body exceeds the configured limit.
var ErrTooLarge = errors.New("response too large")

// FetchError is a failed fetch of URL. Status is the HTTP status when the
// server answered, zero otherwise.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 && errors.Is(e.Err, errStatus) {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch ran out of time.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

var errStatus = errors.New("unexpected status")

func statusError(url string, status int) *FetchError {
	return &FetchError{URL: url, Status: status, Err: fmt.Errorf("%w %d", errStatus, status)}
}
