package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"webgu/fetcher"
	"webgu/security"
)

// ErrSuperseded is returned by Navigate when a newer navigation replaced it.
var ErrSuperseded = errors.New("navigation superseded")

// UserMessage describes a failed navigation for display. It names the URL
// and a generic reason, never the underlying error text.
func UserMessage(url string, err error) string {
	return fmt.Sprintf("Could not load %s: %s", url, reason(err))
}

func reason(err error) string {
	switch {
	case errors.Is(err, security.ErrBlocked):
		return "this site is blocked"
	case errors.Is(err, security.ErrInsecure):
		return "insecure connections are disabled"
	case errors.Is(err, security.ErrScheme):
		return "unsupported address"
	case errors.Is(err, ErrInvalidURL):
		return "invalid address"
	case errors.Is(err, context.Canceled):
		return "the navigation was cancelled"
	case errors.Is(err, fetcher.ErrTooLarge):
		return "the page is too large"
	}

	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		if fe.Timeout() {
			return "the request timed out"
		}
		switch {
		case fe.Status == http.StatusNotFound:
			return "page not found"
		case fe.Status >= 400:
			return fmt.Sprintf("the server answered %d %s", fe.Status, http.StatusText(fe.Status))
		}
	}
	return "the server could not be reached"
}
