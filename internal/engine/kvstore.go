package engine

import (
	"sync/atomic"

	"github.com/iamNilotpal/kvs/internal/reader"
	"github.com/iamNilotpal/kvs/internal/storage"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// KvStore is the Bitcask-style engine: a single Writer guarding the active
// segment, a shared in-memory index, and a per-clone reader.Pool for lookups.
type KvStore struct {
	log     *zap.SugaredLogger
	writer  *storage.Writer
	readers *reader.Pool

	// root marks the original KvStore returned by OpenKvStore, as opposed
	// to a Clone. Only the root's Close tears down the shared writer;
	// a clone's Close only releases its own reader.Pool.
	root   bool
	closed *atomic.Bool
}

// OpenKvStore recovers (or creates) the Bitcask store rooted at dir.
func OpenKvStore(dir string, log *zap.SugaredLogger, compactThreshold uint64) (*KvStore, error) {
	w, err := storage.Recover(dir, log, compactThreshold)
	if err != nil {
		return nil, err
	}

	return &KvStore{
		log:     log,
		writer:  w,
		readers: reader.New(dir, w.LastID()),
		root:    true,
		closed:  &atomic.Bool{},
	}, nil
}

// Set writes key/value through the writer.
func (k *KvStore) Set(key, value string) error {
	if k.closed.Load() {
		return ErrEngineClosed
	}
	return k.writer.Set(key, value)
}

// Get resolves key through the index and reads its value via this clone's
// reader pool. A record with an empty value (what a Set of the empty string
// writes, indistinguishable on disk from a tombstone) is treated the same
// as an absent key.
func (k *KvStore) Get(key string) (string, error) {
	if k.closed.Load() {
		return "", ErrEngineClosed
	}

	loc, ok := k.writer.Index().Get(key)
	if !ok {
		return "", ErrKeyNotFound
	}

	_, value, err := k.readers.ReadValueAt(loc.SegmentID, loc.Offset)
	if err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrKeyNotFound
	}
	return string(value), nil
}

// Remove deletes key, translating the writer's key-not-found index error
// into the engine-wide sentinel.
func (k *KvStore) Remove(key string) error {
	if k.closed.Load() {
		return ErrEngineClosed
	}

	if err := k.writer.Remove(key); err != nil {
		if pkgerrors.GetErrorCode(err) == pkgerrors.ErrorCodeIndexKeyNotFound {
			return ErrKeyNotFound
		}
		return err
	}
	return nil
}

// Clone returns a handle sharing this store's writer and index but owning
// its own reader.Pool, so one connection's cached handles never interfere
// with another's.
func (k *KvStore) Clone() KvsEngine {
	return &KvStore{
		log:     k.log,
		writer:  k.writer,
		readers: reader.New(k.writer.Dir(), k.writer.LastID()),
		root:    false,
		closed:  &atomic.Bool{},
	}
}

// Close releases this clone's reader pool. On the root clone it also closes
// the shared writer, which must only happen once every connection handling
// this store has been torn down.
func (k *KvStore) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := k.readers.Close()
	if k.root {
		err = multierr.Append(err, k.writer.Close())
	}
	return err
}
