package engine

import (
	"sync"
	"testing"

	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, dir string, threshold uint64) *KvStore {
	t.Helper()
	s, err := OpenKvStore(dir, logger.New("test"), threshold)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKvStoreSetGetRemove(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)

	require.NoError(t, store.Set("a", "1"))
	value, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)

	require.NoError(t, store.Remove("a"))
	_, err = store.Get("a")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKvStoreGetMissingKey(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)

	_, err := store.Get("missing")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKvStoreRemoveMissingKey(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)

	err := store.Remove("missing")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKvStoreLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("a", "2"))

	value, err := store.Get("a")
	require.NoError(t, err)
	require.Equal(t, "2", value)
}

func TestKvStoreReopenRecoversState(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Remove("a"))
	require.NoError(t, store.Close())

	reopened := openStore(t, dir, 1<<20)
	_, err := reopened.Get("a")
	require.ErrorIs(t, err, ErrKeyNotFound)

	value, err := reopened.Get("b")
	require.NoError(t, err)
	require.Equal(t, "2", value)
}

func TestKvStoreCloneIndependentReaderPool(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 1<<20)
	require.NoError(t, store.Set("a", "1"))

	clone := store.Clone()
	value, err := clone.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
	require.NoError(t, clone.Close())

	// The root store must still work after a clone is closed.
	value, err = store.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestKvStoreConcurrentGetSetCompaction(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir, 512)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			clone := store.Clone()
			defer clone.Close()
			for j := 0; j < 100; j++ {
				require.NoError(t, clone.Set("shared", "0123456789"))
				_, err := clone.Get("shared")
				require.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	value, err := store.Get("shared")
	require.NoError(t, err)
	require.Equal(t, "0123456789", value)
}
