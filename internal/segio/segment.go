package segio

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// SegmentPrefix is the fixed filename prefix for every segment file. The
// full name is SegmentPrefix + the decimal segment id, e.g. "data-1".
// Unlike the timestamp-suffixed naming some log-structured stores use, this
// scheme sorts correctly by id with a plain numeric comparison, which is all
// recovery and compaction ever need.
const SegmentPrefix = "data-"

// SegmentFileName returns the filename for segment id.
func SegmentFileName(id uint64) string {
	return fmt.Sprintf("%s%d", SegmentPrefix, id)
}

// SegmentPath joins dir and the segment filename for id.
func SegmentPath(dir string, id uint64) string {
	return filepath.Join(dir, SegmentFileName(id))
}

// ParseSegmentID extracts the id from a segment filename, returning ok=false
// for any name that doesn't match the "data-<u64>" pattern. Names that don't
// match are ignored by the directory scan rather than treated as errors —
// a data directory may legitimately contain other files (the identity file,
// a future lock file) alongside segments.
func ParseSegmentID(name string) (id uint64, ok bool) {
	suffix, found := strings.CutPrefix(name, SegmentPrefix)
	if !found || suffix == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SortedSegmentIDs returns the ascending sorted set of valid segment ids
// present in dir. Files whose name doesn't parse as "data-<u64>" are
// ignored.
func SortedSegmentIDs(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("segio: read segment directory: %w", err)
	}

	ids := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := ParseSegmentID(entry.Name()); ok {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)
	return ids, nil
}
