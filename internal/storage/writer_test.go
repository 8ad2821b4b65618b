package storage

import (
	"path/filepath"
	"testing"

	"github.com/iamNilotpal/kvs/internal/segio"
	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/stretchr/testify/require"
)

func openWriter(t *testing.T, dir string, threshold uint64) *Writer {
	t.Helper()
	w, err := Recover(dir, logger.New("test"), threshold)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestSetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)

	require.NoError(t, w.Set("a", "1"))
	loc, ok := w.Index().Get("a")
	require.True(t, ok)

	_, value, err := w.readers.ReadValueAt(loc.SegmentID, loc.Offset)
	require.NoError(t, err)
	require.Equal(t, "1", string(value))
}

func TestLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)

	require.NoError(t, w.Set("a", "1"))
	require.NoError(t, w.Set("a", "2"))

	loc, ok := w.Index().Get("a")
	require.True(t, ok)

	_, value, err := w.readers.ReadValueAt(loc.SegmentID, loc.Offset)
	require.NoError(t, err)
	require.Equal(t, "2", string(value))
	require.Equal(t, 1, w.Index().Len())
}

func TestRemoveMissingKeyFails(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)

	err := w.Remove("missing")
	require.Error(t, err)
	require.False(t, w.Index().Contains("missing"))
}

func TestRemoveErasesIndexEntry(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)

	require.NoError(t, w.Set("a", "1"))
	require.NoError(t, w.Remove("a"))
	require.False(t, w.Index().Contains("a"))
}

// TestCompactionBoundsDiskUsage writes the same key repeatedly past the
// compaction threshold and asserts that afterward at most two segment files
// remain on disk (the compaction target and the new active segment) — the
// property that makes Bitcask-style compaction worth running at all.
func TestCompactionBoundsDiskUsage(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 256)

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Set("a", "0123456789"))
	}

	require.Equal(t, 1, w.Index().Len())
	ids, err := segio.SortedSegmentIDs(dir)
	require.NoError(t, err)
	require.LessOrEqual(t, len(ids), 2)
}

func TestCompactionDropsTombstones(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 128)

	require.NoError(t, w.Set("a", "value"))
	require.NoError(t, w.Remove("a"))
	for i := 0; i < 20; i++ {
		require.NoError(t, w.Set("filler", "0123456789"))
	}

	require.False(t, w.Index().Contains("a"))
	// The tombstone was written to segment 1, which compaction unlinks.
	require.NoFileExists(t, filepath.Join(dir, segio.SegmentFileName(1)))
}

func TestRecoveryReplaysLog(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)

	require.NoError(t, w.Set("a", "1"))
	require.NoError(t, w.Set("b", "2"))
	require.NoError(t, w.Remove("a"))
	require.NoError(t, w.Close())

	w2 := openWriter(t, dir, 1<<20)
	require.False(t, w2.Index().Contains("a"))
	loc, ok := w2.Index().Get("b")
	require.True(t, ok)
	_, value, err := w2.readers.ReadValueAt(loc.SegmentID, loc.Offset)
	require.NoError(t, err)
	require.Equal(t, "2", string(value))
}

func TestRecoveryAlwaysRotatesActiveSegment(t *testing.T) {
	dir := t.TempDir()
	w := openWriter(t, dir, 1<<20)
	require.NoError(t, w.Set("a", "1"))
	firstActive := w.activeID
	require.NoError(t, w.Close())

	w2 := openWriter(t, dir, 1<<20)
	require.Greater(t, w2.activeID, firstActive)
	require.FileExists(t, filepath.Join(dir, segio.SegmentFileName(w2.activeID)))
}
