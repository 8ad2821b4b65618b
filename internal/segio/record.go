// Package segio implements the on-disk record codec and segment file naming
// scheme shared by the writer, the reader pool, and recovery. A record is a
// single log entry: a timestamp, a key, and a value. A value of zero length
// marks the record as a tombstone — the key it names has been deleted.
//
// Every record is encoded as a fixed 24-byte little-endian header followed
// by the raw key and value bytes, with no separators, version tag, or
// checksum. The encoding is deliberately simple: Read only needs to trust
// the lengths in the header, never scan for delimiters.
package segio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
)

// headerSize is the width, in bytes, of the fixed record header:
// an 8-byte timestamp, an 8-byte key length, and an 8-byte value length.
const headerSize = 24

// ErrCorruptLog is the sentinel wrapped by every decode failure, whether it
// comes from a short read or from key/value bytes that are not valid UTF-8.
// Recovery treats a short read at a segment's tail as a tolerated truncation
// (see internal/storage's recovery scan); any other use of this sentinel is
// a real corruption.
var ErrCorruptLog = errors.New("segio: corrupt log record")

// Record is one encoded log entry: a set, or a tombstone if Value is empty.
type Record struct {
	Timestamp int64
	Key       []byte
	Value     []byte
}

// IsTombstone reports whether this record marks its key as deleted.
func (r Record) IsTombstone() bool {
	return len(r.Value) == 0
}

// Locator pins a record to an exact byte range in a specific segment.
// (SegmentID, Offset, Length) always identifies the full range of a record
// that was once written and has not since been unlinked by compaction.
type Locator struct {
	SegmentID uint64
	Offset    uint64
	Length    uint64
	Timestamp int64
}

// Append encodes rec and writes it to w, returning the number of bytes
// written (the record's Length, for building its Locator).
func Append(w io.Writer, rec Record) (uint64, error) {
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(rec.Timestamp))
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(rec.Key)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(rec.Value)))

	if _, err := w.Write(header[:]); err != nil {
		return 0, fmt.Errorf("segio: write header: %w", err)
	}
	if _, err := w.Write(rec.Key); err != nil {
		return 0, fmt.Errorf("segio: write key: %w", err)
	}
	if _, err := w.Write(rec.Value); err != nil {
		return 0, fmt.Errorf("segio: write value: %w", err)
	}

	return uint64(headerSize + len(rec.Key) + len(rec.Value)), nil
}

// Read decodes one record starting at r's current position, returning the
// record and the total number of bytes consumed (headerSize + klen + vlen).
//
// A short read on the header itself — zero bytes available — returns
// io.EOF unchanged, signaling a clean end of stream. Any other short read,
// or key/value bytes that are not valid UTF-8, returns an error wrapping
// ErrCorruptLog.
func Read(r io.Reader) (Record, uint64, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, 0, io.EOF
		}
		return Record{}, 0, fmt.Errorf("%w: short header read: %v", ErrCorruptLog, err)
	}

	timestamp := int64(binary.LittleEndian.Uint64(header[0:8]))
	klen := binary.LittleEndian.Uint64(header[8:16])
	vlen := binary.LittleEndian.Uint64(header[16:24])

	key := make([]byte, klen)
	if _, err := io.ReadFull(r, key); err != nil {
		return Record{}, 0, fmt.Errorf("%w: short key read: %v", ErrCorruptLog, err)
	}
	if !utf8.Valid(key) {
		return Record{}, 0, fmt.Errorf("%w: key is not valid utf-8", ErrCorruptLog)
	}

	value := make([]byte, vlen)
	if _, err := io.ReadFull(r, value); err != nil {
		return Record{}, 0, fmt.Errorf("%w: short value read: %v", ErrCorruptLog, err)
	}
	if !utf8.Valid(value) {
		return Record{}, 0, fmt.Errorf("%w: value is not valid utf-8", ErrCorruptLog)
	}

	length := uint64(headerSize) + klen + vlen
	return Record{Timestamp: timestamp, Key: key, Value: value}, length, nil
}

// ReadValueAt seeks to offset in r, reads the header, skips the key, and
// reads only the value — the hot path for Get, which never needs the key
// back (the caller already has it) and never needs the whole record.
func ReadValueAt(r io.ReaderAt, offset int64) (timestamp int64, value []byte, err error) {
	var header [headerSize]byte
	if _, err := r.ReadAt(header[:], offset); err != nil {
		return 0, nil, pkgerrors.NewStorageError(
			fmt.Errorf("%w: short header read: %v", ErrCorruptLog, err),
			pkgerrors.ErrorCodeHeaderReadFailure, "failed to read record header",
		).WithOffset(int(offset))
	}

	timestamp = int64(binary.LittleEndian.Uint64(header[0:8]))
	klen := binary.LittleEndian.Uint64(header[8:16])
	vlen := binary.LittleEndian.Uint64(header[16:24])

	value = make([]byte, vlen)
	valueOffset := offset + headerSize + int64(klen)
	if vlen > 0 {
		if _, err := r.ReadAt(value, valueOffset); err != nil {
			return 0, nil, pkgerrors.NewStorageError(
				fmt.Errorf("%w: short value read: %v", ErrCorruptLog, err),
				pkgerrors.ErrorCodePayloadReadFailure, "failed to read record value",
			).WithOffset(int(valueOffset))
		}
	}

	return timestamp, value, nil
}

// equal reports whether two records encode to the same bytes. Used by tests
// asserting the round-trip law without depending on slice identity.
func equal(a, b Record) bool {
	return a.Timestamp == b.Timestamp && bytes.Equal(a.Key, b.Key) && bytes.Equal(a.Value, b.Value)
}
