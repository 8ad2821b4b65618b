package storage

import (
	"os"

	"github.com/iamNilotpal/kvs/internal/segio"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
)

// compact rewrites every still-live record into a fresh segment and retires
// everything below it. Caller must hold w.mu.
//
// The id arithmetic and publish ordering follow the protocol exactly:
//
//  1. old_id is the current active segment.
//  2. compact_id = old_id + 1 receives the rewritten live records.
//  3. new_active_id = old_id + 2 becomes the new target for future writes.
//  4. new_active_id is published to lastID *before* any rewriting starts, so
//     every reader pool (this writer's own included) evicts cached handles
//     for ids below it and is forced to re-open — never serving a read
//     against a segment compaction is about to delete out from under it.
//  5. Only after the rewrite completes are segments with id < compact_id
//     unlinked; compact_id itself stays on disk as the new lowest segment.
func (w *Writer) compact() error {
	oldID := w.activeID
	compactID := oldID + 1
	newActiveID := oldID + 2

	compactFile, _, err := openSegmentFile(w.dir, compactID)
	if err != nil {
		return err
	}

	w.lastID.Store(newActiveID)

	var compactSize uint64
	entries := w.index.Snapshot()
	for _, entry := range entries {
		rec, err := w.readers.ReadRecordAt(entry.Locator.SegmentID, entry.Locator.Offset)
		if err != nil {
			compactFile.Close()
			return err
		}

		// A record surviving in the index but stamped with a different
		// timestamp than its own locator means a newer write raced ahead
		// of the snapshot and already superseded it; skip it here, the
		// newer entry will be (or already was) rewritten in its place.
		if rec.Timestamp != entry.Locator.Timestamp {
			continue
		}

		if rec.IsTombstone() {
			w.index.Remove(entry.Key)
			continue
		}

		length, err := segio.Append(compactFile, rec)
		if err != nil {
			compactFile.Close()
			return pkgerrors.NewStorageError(
				err, pkgerrors.ErrorCodeIO, "failed to rewrite record during compaction",
			).WithSegmentID(int(compactID))
		}

		w.index.Insert(entry.Key, segio.Locator{
			SegmentID: compactID,
			Offset:    compactSize,
			Length:    length,
			Timestamp: rec.Timestamp,
		})
		compactSize += length
	}

	if err := w.active.Close(); err != nil {
		compactFile.Close()
		return pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to close retired active segment",
		).WithSegmentID(int(oldID))
	}

	ids, err := segio.SortedSegmentIDs(w.dir)
	if err != nil {
		compactFile.Close()
		return err
	}
	for _, id := range ids {
		if id >= compactID {
			continue
		}
		if err := os.Remove(segio.SegmentPath(w.dir, id)); err != nil && !os.IsNotExist(err) {
			w.log.Warnw("failed to remove retired segment", "segment_id", id, "error", err)
		}
	}

	newActive, newSize, err := openSegmentFile(w.dir, newActiveID)
	if err != nil {
		compactFile.Close()
		return err
	}
	if err := compactFile.Close(); err != nil {
		w.log.Warnw("failed to close compacted segment writer", "segment_id", compactID, "error", err)
	}

	w.active = newActive
	w.activeID = newActiveID
	w.size = newSize
	w.uncompactedBytes = 0

	w.log.Infow("compaction complete",
		"old_id", oldID, "compact_id", compactID, "new_active_id", newActiveID,
		"live_keys", len(entries),
	)
	return nil
}
