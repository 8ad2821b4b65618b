// Package storage implements the single-writer half of the log: the active
// segment handle, the uncompacted-bytes counter that triggers compaction,
// and the compaction protocol itself. Exactly one goroutine may execute a
// Writer's critical section at a time, enforced by an internal mutex; reads
// never take this lock and so are never blocked by a Set, a Remove, or a
// compaction running inline inside one of them.
package storage

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/kvs/internal/index"
	"github.com/iamNilotpal/kvs/internal/reader"
	"github.com/iamNilotpal/kvs/internal/segio"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
	"go.uber.org/zap"
)

// Writer owns the directory's active segment and drives every mutation
// (Set, Remove) plus the compaction they may trigger. It shares the index
// and the last-id watermark with the reader pools rather than owning them,
// so neither the writer nor any reader pool owns the other.
type Writer struct {
	mu  sync.Mutex
	dir string
	log *zap.SugaredLogger

	compactThreshold uint64
	uncompactedBytes uint64

	activeID uint64
	active   *os.File
	size     int64

	lastID *atomic.Uint64
	index  *index.Index

	// readers backs the writer's own compaction reads. It is independent
	// of any engine clone's reader.Pool — compaction only ever runs while
	// the writer mutex is held, so a single dedicated pool suffices.
	readers *reader.Pool
}

// openSegmentFile opens the segment for id in create+append mode and seeks
// to its current end, returning the handle and its size.
func openSegmentFile(dir string, id uint64) (*os.File, int64, error) {
	path := segio.SegmentPath(dir, id)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, pkgerrors.ClassifyFileOpenError(err, path, segio.SegmentFileName(id))
	}

	size, err := f.Seek(0, os.SEEK_END)
	if err != nil {
		f.Close()
		return nil, 0, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to seek to end of segment",
		).WithPath(path)
	}

	return f, size, nil
}

// Set appends a record for key/value, updates the index, accounts whatever
// locator it displaced as newly stale, and compacts inline if that pushes
// uncompactedBytes over the configured threshold.
func (w *Writer) Set(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := segio.Record{Timestamp: time.Now().Unix(), Key: []byte(key), Value: []byte(value)}
	loc, err := w.append(rec)
	if err != nil {
		return err
	}

	prev, hadPrev := w.index.Insert(key, loc)
	if hadPrev {
		w.uncompactedBytes += prev.Length
	}

	return w.maybeCompact()
}

// Remove appends a tombstone for key and erases its index entry immediately
// (the immediate-delete variant — see DESIGN.md for why this was chosen
// over rewriting the entry to point at the tombstone record). It fails with
// an IndexError coded ErrorCodeIndexKeyNotFound without writing anything if
// key has no live entry.
func (w *Writer) Remove(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prevBeforeWrite, existed := w.index.Get(key)
	if !existed {
		return pkgerrors.NewIndexError(nil, pkgerrors.ErrorCodeIndexKeyNotFound, "key not found").
			WithKey(key).WithOperation("Remove")
	}

	rec := segio.Record{Timestamp: time.Now().Unix(), Key: []byte(key)}
	loc, err := w.append(rec)
	if err != nil {
		return err
	}

	// The tombstone record is itself garbage the instant it's written —
	// nothing will ever point to it — so its own length joins the
	// displaced live record's length in the stale-bytes count.
	w.index.Remove(key)
	w.uncompactedBytes += prevBeforeWrite.Length + loc.Length

	return w.maybeCompact()
}

// append writes rec to the active segment and returns its locator. Caller
// must hold w.mu.
func (w *Writer) append(rec segio.Record) (segio.Locator, error) {
	length, err := segio.Append(w.active, rec)
	if err != nil {
		return segio.Locator{}, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to append record",
		).WithSegmentID(int(w.activeID)).WithOffset(int(w.size))
	}

	loc := segio.Locator{
		SegmentID: w.activeID,
		Offset:    uint64(w.size),
		Length:    length,
		Timestamp: rec.Timestamp,
	}
	w.size += int64(length)
	return loc, nil
}

// maybeCompact runs compaction if uncompactedBytes has crossed the
// threshold. Caller must hold w.mu.
func (w *Writer) maybeCompact() error {
	if w.uncompactedBytes <= w.compactThreshold {
		return nil
	}
	return w.compact()
}

// Index returns the index shared between this writer and every reader pool
// cloned from it. Callers must not mutate it directly — all mutation goes
// through Set/Remove so it stays consistent with what's on disk.
func (w *Writer) Index() *index.Index {
	return w.index
}

// LastID returns the atomic eviction watermark shared with every reader
// pool. A new reader.Pool should be constructed from this same pointer so
// a single compaction invalidates every clone's cached handles at once.
func (w *Writer) LastID() *atomic.Uint64 {
	return w.lastID
}

// Dir returns the directory this writer's segments live in.
func (w *Writer) Dir() string {
	return w.dir
}

// Close flushes and releases the writer's resources: the active segment and
// its dedicated compaction reader pool. It does not touch the shared index.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if err := w.readers.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer reader pool: %w", err))
	}
	if err := w.active.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close active segment: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("storage: close writer: %v", errs)
}
