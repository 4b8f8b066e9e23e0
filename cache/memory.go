package cache

import (
	"container/list"
	"context"
	"sync"
)

type memoryItem struct {
	url   string
	entry Entry
}

// Memory is an in-process Cache. Readers never observe a partially written
// entry because entries are swapped under the lock.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List // front is oldest
	items    map[string]*list.Element
}

// NewMemory creates a cache holding at most capacity entries. A
// non-positive capacity uses DefaultCapacity.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the entry stored for url. Reads do not affect eviction order.
func (m *Memory) Get(_ context.Context, url string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	el, ok := m.items[url]
	if !ok {
		return Entry{}, false, nil
	}
	return el.Value.(*memoryItem).entry, true, nil
}

// Put stores e for url. Re-storing a URL replaces its entry and makes it the
// newest. At capacity the oldest entry is evicted first.
func (m *Memory) Put(_ context.Context, url string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[url]; ok {
		el.Value.(*memoryItem).entry = e
		m.order.MoveToBack(el)
		return nil
	}

	for m.order.Len() >= m.capacity {
		oldest := m.order.Front()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*memoryItem).url)
	}
	m.items[url] = m.order.PushBack(&memoryItem{url: url, entry: e})
	return nil
}

// Delete removes url from the cache.
func (m *Memory) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[url]; ok {
		m.order.Remove(el)
		delete(m.items, url)
	}
	return nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}

// keys returns the cached URLs from oldest to newest.
func (m *Memory) keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, m.order.Len())
	for el := m.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*memoryItem).url)
	}
	return keys
}
