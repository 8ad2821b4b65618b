// Package engine provides the dynamically-dispatched storage engine facade
// the server and CLI program against: KvsEngine. Two implementations
// satisfy it — KvStore, the Bitcask-style segmented log, and SledEngine, a
// bbolt-backed alternative selected with --engine sled — so a caller never
// needs to know which one it's talking to.
package engine

import (
	"errors"
	"fmt"

	"github.com/iamNilotpal/kvs/internal/identity"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
	"github.com/iamNilotpal/kvs/pkg/options"
	"go.uber.org/zap"
)

// ErrKeyNotFound is returned by Get and Remove when the key has no live
// entry. It is a sentinel rather than a formatted error so callers — in
// particular internal/server, which must turn it into the literal string
// "Key not found" per the wire protocol — can match it with errors.Is
// regardless of which engine produced it.
var ErrKeyNotFound = errors.New("engine: key not found")

// ErrEngineClosed is returned by any operation attempted after Close.
var ErrEngineClosed = errors.New("engine: closed")

// KvsEngine is the interface every storage engine implementation satisfies.
// internal/server holds one KvsEngine and calls Clone per connection,
// letting either engine provide its own notion of a cheap, connection-local
// handle without the server caring which engine it is.
type KvsEngine interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Remove(key string) error

	// Clone returns a lightweight handle to the same underlying store,
	// suitable for handing to a single connection's goroutine. Clones
	// share the engine's writer/database; Close on a clone never closes
	// the shared resources it was cloned from.
	Clone() KvsEngine

	Close() error
}

// Open constructs the engine named by opts.Engine ("kvs" or "sled"),
// verifying opts.DataDir's identity file against it first.
func Open(opts *options.Options, log *zap.SugaredLogger) (KvsEngine, error) {
	if err := identity.Check(opts.DataDir, opts.Engine); err != nil {
		return nil, err
	}

	switch opts.Engine {
	case "kvs":
		return OpenKvStore(opts.DataDir, log, opts.CompactThreshold)
	case "sled":
		return OpenSledEngine(opts.DataDir, log)
	default:
		return nil, pkgerrors.NewValidationError(
			nil, pkgerrors.ErrorCodeInvalidInput, fmt.Sprintf("unknown engine %q", opts.Engine),
		).WithField("engine").WithProvided(opts.Engine)
	}
}
