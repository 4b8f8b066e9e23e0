// Package fetcher retrieves pages and images over HTTP, with a headless
// Chrome fetcher for pages that only render with JavaScript.
package fetcher

import (
	"context"
	"net/http"
	"time"
)

// Result is a fetched page.
type Result struct {
	Markup      string
	URL         string // final URL after redirects
	Status      int
	ContentType string
	Charset     string
	Header      http.Header
	UsedBrowser bool
	FetchTime   time.Duration
}

// Fetcher loads the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// ImageFetcher loads image bytes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Options configures the fetchers.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	Retries       int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
	MaxBodyBytes  int64
	MaxImageBytes int64
	// ImageRPS limits image requests per second; zero is unlimited.
	ImageRPS   float64
	ChromePath string // empty = auto-detect
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) webgu/1.0",
		Timeout:       30 * time.Second,
		Retries:       2,
		RetryWaitMin:  500 * time.Millisecond,
		RetryWaitMax:  5 * time.Second,
		MaxBodyBytes:  10 << 20,
		MaxImageBytes: 5 << 20,
		ImageRPS:      8,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.UserAgent == "" {
		o.UserAgent = d.UserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryWaitMin <= 0 {
		o.RetryWaitMin = d.RetryWaitMin
	}
	if o.RetryWaitMax <= 0 {
		o.RetryWaitMax = d.RetryWaitMax
	}
	if o.RetryWaitMax < o.RetryWaitMin {
		o.RetryWaitMax = o.RetryWaitMin
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = d.MaxBodyBytes
	}
	if o.MaxImageBytes <= 0 {
		o.MaxImageBytes = d.MaxImageBytes
	}
	return o
}
