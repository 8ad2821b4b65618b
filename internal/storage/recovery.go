package storage

import (
	stderrors "errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/iamNilotpal/kvs/internal/index"
	"github.com/iamNilotpal/kvs/internal/reader"
	"github.com/iamNilotpal/kvs/internal/segio"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
	"github.com/iamNilotpal/kvs/pkg/filesys"
	"go.uber.org/zap"
)

// applyToIndex folds one decoded record into idx and returns the number of
// bytes the application just rendered stale: the displaced previous
// locator's length, plus — for a tombstone — the tombstone record's own
// length, since nothing will ever point to it.
func applyToIndex(idx *index.Index, key string, rec segio.Record, loc segio.Locator) uint64 {
	if rec.IsTombstone() {
		prev, had := idx.Remove(key)
		if had {
			return prev.Length + loc.Length
		}
		return loc.Length
	}

	prev, had := idx.Insert(key, loc)
	if had {
		return prev.Length
	}
	return 0
}

// Recover rebuilds idx from every existing segment under dir in ascending id
// order and returns a Writer positioned on a brand new active segment.
//
// A truncated trailing record — the tail end of a process that crashed
// mid-append — is tolerated silently: replay of a segment stops at its first
// decode failure without treating it as corruption. This applies to every
// segment, not just the newest, because recovery always rotates to a fresh
// active segment and so a crash-truncated segment stops being the newest
// one as soon as the store has been reopened once.
func Recover(dir string, log *zap.SugaredLogger, compactThreshold uint64) (*Writer, error) {
	if err := filesys.CreateDir(dir, 0755, false); err != nil {
		return nil, err
	}

	ids, err := segio.SortedSegmentIDs(dir)
	if err != nil {
		return nil, err
	}

	idx := index.New()
	var uncompactedBytes uint64

	for _, id := range ids {
		n, err := replaySegment(dir, id, idx, &uncompactedBytes)
		if err != nil {
			return nil, err
		}
		log.Infow("replayed segment", "segment_id", id, "records_applied", n)
	}

	activeID := uint64(1)
	if len(ids) > 0 {
		activeID = ids[len(ids)-1] + 1
	}

	active, size, err := openSegmentFile(dir, activeID)
	if err != nil {
		return nil, err
	}

	lastID := &atomic.Uint64{}
	w := &Writer{
		dir:              dir,
		log:              log,
		compactThreshold: compactThreshold,
		uncompactedBytes: uncompactedBytes,
		activeID:         activeID,
		active:           active,
		size:             size,
		lastID:           lastID,
		index:            idx,
		readers:          reader.New(dir, lastID),
	}
	return w, nil
}

// replaySegment decodes every record in segment id, folding each into idx
// and tallying newly-stale bytes into *uncompactedBytes. It returns the
// count of records applied.
func replaySegment(dir string, id uint64, idx *index.Index, uncompactedBytes *uint64) (int, error) {
	path := segio.SegmentPath(dir, id)
	f, err := os.Open(path)
	if err != nil {
		return 0, pkgerrors.ClassifyFileOpenError(err, path, segio.SegmentFileName(id))
	}
	defer f.Close()

	var offset uint64
	var applied int
	for {
		rec, length, err := segio.Read(f)
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			if stderrors.Is(err, segio.ErrCorruptLog) {
				// Interrupted write at the tail of this segment;
				// everything decoded before this point is still valid.
				break
			}
			return applied, pkgerrors.NewStorageError(
				err, pkgerrors.ErrorCodeSegmentCorrupted, "failed to replay segment",
			).WithPath(path).WithSegmentID(int(id)).WithOffset(int(offset))
		}

		loc := segio.Locator{SegmentID: id, Offset: offset, Length: length, Timestamp: rec.Timestamp}
		*uncompactedBytes += applyToIndex(idx, string(rec.Key), rec, loc)
		offset += length
		applied++
	}

	return applied, nil
}
