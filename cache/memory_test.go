package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgu/html"
)

func entry(markup string) Entry {
	return Entry{Markup: markup, Elements: []html.Element{{Tag: "p", Text: markup}}}
}

func TestMemoryGetPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	_, ok, err := m.Get(ctx, "https://a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "https://a", entry("a")))
	got, ok, err := m.Get(ctx, "https://a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entry("a"), got)
}

func TestMemoryEvictsOldestInserted(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for _, u := range []string{"a", "b", "c"} {
		require.NoError(t, m.Put(ctx, u, entry(u)))
	}

	// Reads do not refresh an entry.
	_, _, _ = m.Get(ctx, "a")
	require.NoError(t, m.Put(ctx, "d", entry("d")))

	assert.Equal(t, []string{"b", "c", "d"}, m.keys())
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryReputMovesToNewest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for _, u := range []string{"a", "b", "c"} {
		require.NoError(t, m.Put(ctx, u, entry(u)))
	}
	require.NoError(t, m.Put(ctx, "a", entry("a2")))
	require.NoError(t, m.Put(ctx, "d", entry("d")))

	assert.Equal(t, []string{"c", "a", "d"}, m.keys())
	got, ok, _ := m.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "a2", got.Markup)
	assert.Equal(t, 3, m.Len())
}

func TestMemoryDefaultCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		require.NoError(t, m.Put(ctx, fmt.Sprint(i), entry("x")))
	}
	assert.Equal(t, DefaultCapacity, m.Len())
	assert.Equal(t, "5", m.keys()[0])

	require.NoError(t, m.Delete(ctx, "5"))
	require.NoError(t, m.Delete(ctx, "missing"))
	assert.Equal(t, DefaultCapacity-1, m.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				u := fmt.Sprintf("u%d", i%20)
				_ = m.Put(ctx, u, entry(u))
				if e, ok, _ := m.Get(ctx, u); ok {
					assert.Equal(t, e.Markup, e.Elements[0].Text)
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, m.Len(), 10)
}

var _ Cache = (*Memory)(nil)
var _ Cache = (*Redis)(nil)
