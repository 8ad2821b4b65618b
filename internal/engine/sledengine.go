package engine

import (
	"path/filepath"
	"sync/atomic"
	"time"

	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// sledBucket is the single bucket every key/value pair lives in. The name
// is a nod to the engine's on-the-wire identity ("sled") rather than to
// anything bbolt itself cares about.
var sledBucket = []byte("sled")

// SledEngine is the second KvsEngine implementation: a bbolt-backed
// single-file B+tree store, selected with --engine sled. bbolt already
// serializes writers and lets readers run concurrently with a writer via
// MVCC snapshots, so this adaptor does none of the locking KvStore does —
// it only has to translate Set/Get/Remove into bbolt transactions.
type SledEngine struct {
	log    *zap.SugaredLogger
	db     *bbolt.DB
	root   bool
	closed *atomic.Bool
}

// OpenSledEngine opens (creating if absent) the bbolt database file at
// dir/sled.db and ensures its single bucket exists.
func OpenSledEngine(dir string, log *zap.SugaredLogger) (*SledEngine, error) {
	path := filepath.Join(dir, "sled.db")
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to open sled database",
		).WithPath(path)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sledBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, pkgerrors.NewStorageError(
			err, pkgerrors.ErrorCodeIO, "failed to create sled bucket",
		).WithPath(path)
	}

	return &SledEngine{log: log, db: db, root: true, closed: &atomic.Bool{}}, nil
}

func (s *SledEngine) Set(key, value string) error {
	if s.closed.Load() {
		return ErrEngineClosed
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sledBucket).Put([]byte(key), []byte(value))
	})
}

func (s *SledEngine) Get(key string) (string, error) {
	if s.closed.Load() {
		return "", ErrEngineClosed
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sledBucket).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", ErrKeyNotFound
	}
	return string(value), nil
}

func (s *SledEngine) Remove(key string) error {
	if s.closed.Load() {
		return ErrEngineClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sledBucket)
		if b.Get([]byte(key)) == nil {
			return ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
}

// Clone returns a handle to the same database. bbolt transactions are
// already safe for concurrent use across goroutines sharing one *bbolt.DB,
// so the clone is just a non-root view over it — there is no per-clone
// resource to allocate the way KvStore needs a reader.Pool.
func (s *SledEngine) Clone() KvsEngine {
	return &SledEngine{log: s.log, db: s.db, root: false, closed: &atomic.Bool{}}
}

// Close closes the underlying database file, but only on the root handle.
func (s *SledEngine) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !s.root {
		return nil
	}
	return s.db.Close()
}
