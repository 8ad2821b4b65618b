package reader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/iamNilotpal/kvs/internal/segio"
	"github.com/stretchr/testify/require"
)

func writeSegment(t *testing.T, dir string, id uint64, records ...segio.Record) []segio.Locator {
	t.Helper()
	f, err := os.OpenFile(segio.SegmentPath(dir, id), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	defer f.Close()

	var offset uint64
	locs := make([]segio.Locator, 0, len(records))
	for _, rec := range records {
		length, err := segio.Append(f, rec)
		require.NoError(t, err)
		locs = append(locs, segio.Locator{SegmentID: id, Offset: offset, Length: length, Timestamp: rec.Timestamp})
		offset += length
	}
	return locs
}

func TestReadValueAt(t *testing.T) {
	dir := t.TempDir()
	locs := writeSegment(t, dir, 1, segio.Record{Timestamp: 1, Key: []byte("k"), Value: []byte("v1")})

	lastID := &atomic.Uint64{}
	pool := New(dir, lastID)
	defer pool.Close()

	_, value, err := pool.ReadValueAt(locs[0].SegmentID, locs[0].Offset)
	require.NoError(t, err)
	require.Equal(t, "v1", string(value))
}

func TestReadRecordAt(t *testing.T) {
	dir := t.TempDir()
	locs := writeSegment(t, dir, 1, segio.Record{Timestamp: 5, Key: []byte("key"), Value: []byte("val")})

	lastID := &atomic.Uint64{}
	pool := New(dir, lastID)
	defer pool.Close()

	rec, err := pool.ReadRecordAt(locs[0].SegmentID, locs[0].Offset)
	require.NoError(t, err)
	require.Equal(t, "key", string(rec.Key))
	require.Equal(t, "val", string(rec.Value))
}

func TestEviction(t *testing.T) {
	dir := t.TempDir()
	writeSegment(t, dir, 1, segio.Record{Timestamp: 1, Key: []byte("a"), Value: []byte("1")})
	writeSegment(t, dir, 2, segio.Record{Timestamp: 2, Key: []byte("b"), Value: []byte("2")})

	lastID := &atomic.Uint64{}
	pool := New(dir, lastID)
	defer pool.Close()

	_, _, err := pool.ReadValueAt(1, 0)
	require.NoError(t, err)
	require.Contains(t, pool.handles, uint64(1))

	lastID.Store(2)
	_, _, err = pool.ReadValueAt(2, 0)
	require.NoError(t, err)
	require.NotContains(t, pool.handles, uint64(1))
}

func TestOpenMissingSegmentFails(t *testing.T) {
	dir := t.TempDir()
	lastID := &atomic.Uint64{}
	pool := New(dir, lastID)
	defer pool.Close()

	_, _, err := pool.ReadValueAt(99, 0)
	require.Error(t, err)
	require.False(t, fileExists(filepath.Join(dir, segio.SegmentFileName(99))))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
