// Package cache stores fetched pages keyed by URL so that revisits skip the
// network and the scanner.
package cache

import (
	"context"
	"errors"
	"time"

	"webgu/html"
)

// DefaultCapacity is the number of pages kept before the oldest is evicted.
const DefaultCapacity = 50

// ErrCorrupt is returned when a stored entry cannot be decoded.
var ErrCorrupt = errors.New("cache entry corrupt")

// Entry is one cached page: the markup as fetched and the elements scanned
// from it. Entries are replaced whole, never mutated in place.
type Entry struct {
	Markup    string         `json:"markup"`
	Elements  []html.Element `json:"elements"`
	Truncated bool           `json:"truncated,omitempty"`
	Title     string         `json:"title,omitempty"`
	StoredAt  time.Time      `json:"stored_at"`
}

// Cache is a bounded URL-keyed page store. Evicts in insertion order.
type Cache interface {
	Get(ctx context.Context, url string) (Entry, bool, error)
	Put(ctx context.Context, url string, e Entry) error
	// Delete drops the entry for url. A missing entry is not an error.
	Delete(ctx context.Context, url string) error
}
