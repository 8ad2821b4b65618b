// Package reader implements the per-goroutine lazy cache of read-only
// segment file handles used by the hot Get path. Each engine clone owns its
// own Pool; handles are never shared across goroutines, which eliminates
// locking on the read path beyond the atomic last-id load compaction uses
// to publish eviction.
package reader

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/iamNilotpal/kvs/internal/segio"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
)

// Pool is a lazily-populated, per-goroutine cache of open segment handles.
// It is not safe for concurrent use — callers must give each goroutine (in
// practice, each engine clone) its own Pool.
type Pool struct {
	dir    string
	lastID *atomic.Uint64
	handles map[uint64]*os.File
}

// New creates a Pool rooted at dir. lastID is the writer's shared eviction
// watermark: every clone's Pool reads the same atomic so a single
// compaction invalidates every clone's stale handles.
func New(dir string, lastID *atomic.Uint64) *Pool {
	return &Pool{dir: dir, lastID: lastID, handles: make(map[uint64]*os.File)}
}

// evict drops every cached handle whose segment id is strictly less than
// the current last-id watermark. This doesn't imply the underlying file was
// deleted — only ids below compaction's new compact-segment id are ever
// actually unlinked — but it forces a fresh, cheap re-open rather than
// risking a handle open on an inode compaction is about to retire.
func (p *Pool) evict() {
	last := p.lastID.Load()
	for id, f := range p.handles {
		if id < last {
			f.Close()
			delete(p.handles, id)
		}
	}
}

func (p *Pool) handle(id uint64) (*os.File, error) {
	p.evict()

	if f, ok := p.handles[id]; ok {
		return f, nil
	}

	path := segio.SegmentPath(p.dir, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to open segment for reading",
		).WithPath(path).WithSegmentID(int(id))
	}

	p.handles[id] = f
	return f, nil
}

// ReadValueAt returns the timestamp and value of the record at (id, offset),
// opening (or reusing) a read handle for segment id.
func (p *Pool) ReadValueAt(id uint64, offset uint64) (int64, []byte, error) {
	f, err := p.handle(id)
	if err != nil {
		return 0, nil, err
	}
	return segio.ReadValueAt(f, int64(offset))
}

// ReadRecordAt returns the full record at (id, offset). Compaction uses this
// to re-read and rewrite live entries; the plain Get path only ever needs
// ReadValueAt.
func (p *Pool) ReadRecordAt(id uint64, offset uint64) (segio.Record, error) {
	f, err := p.handle(id)
	if err != nil {
		return segio.Record{}, err
	}

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return segio.Record{}, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to seek segment for compaction read",
		).WithSegmentID(int(id)).WithOffset(int(offset))
	}

	rec, _, err := segio.Read(f)
	if err != nil {
		return segio.Record{}, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeSegmentCorrupted, "failed to read record during compaction",
		).WithSegmentID(int(id)).WithOffset(int(offset))
	}
	return rec, nil
}

// Close releases every cached handle. Call it when the owning engine clone
// is discarded.
func (p *Pool) Close() error {
	var firstErr error
	for id, f := range p.handles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.handles, id)
	}
	return firstErr
}
