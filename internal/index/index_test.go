package index

import (
	"sync"
	"testing"

	"github.com/iamNilotpal/kvs/internal/segio"
	"github.com/stretchr/testify/require"
)

func TestInsertGetRemove(t *testing.T) {
	idx := New()

	_, ok := idx.Get("missing")
	require.False(t, ok)

	loc1 := segio.Locator{SegmentID: 1, Offset: 0, Length: 10, Timestamp: 1}
	prev, had := idx.Insert("k", loc1)
	require.False(t, had)
	require.Zero(t, prev)

	got, ok := idx.Get("k")
	require.True(t, ok)
	require.Equal(t, loc1, got)

	loc2 := segio.Locator{SegmentID: 1, Offset: 10, Length: 20, Timestamp: 2}
	prev, had = idx.Insert("k", loc2)
	require.True(t, had)
	require.Equal(t, loc1, prev)

	prev, had = idx.Remove("k")
	require.True(t, had)
	require.Equal(t, loc2, prev)

	_, ok = idx.Get("k")
	require.False(t, ok)

	_, had = idx.Remove("k")
	require.False(t, had)
}

func TestSnapshot(t *testing.T) {
	idx := New()
	idx.Insert("a", segio.Locator{SegmentID: 1, Offset: 0, Length: 1})
	idx.Insert("b", segio.Locator{SegmentID: 1, Offset: 1, Length: 1})

	entries := idx.Snapshot()
	require.Len(t, entries, 2)

	byKey := make(map[string]segio.Locator, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e.Locator
	}
	require.Contains(t, byKey, "a")
	require.Contains(t, byKey, "b")
}

func TestConcurrentAccess(t *testing.T) {
	idx := New()
	const keys = 100
	const writers = 8

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keys; i++ {
				key := string(rune('a' + i%26))
				idx.Insert(key, segio.Locator{SegmentID: uint64(w), Offset: uint64(i), Length: 1, Timestamp: int64(i)})
				idx.Get(key)
			}
		}(w)
	}
	wg.Wait()

	require.LessOrEqual(t, idx.Len(), 26)
}
