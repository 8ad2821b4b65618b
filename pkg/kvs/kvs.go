// Package kvs provides the embeddable entry point to the store: a single
// Instance wrapping whichever internal/engine.KvsEngine the caller's
// options select, for programs that want the database in-process rather
// than over internal/server's TCP protocol.
package kvs

import (
	"github.com/iamNilotpal/kvs/internal/engine"
	"github.com/iamNilotpal/kvs/pkg/logger"
	"github.com/iamNilotpal/kvs/pkg/options"
)

// Instance is the primary entry point for embedding the store directly in
// a Go process, without going through internal/server.
type Instance struct {
	engine  engine.KvsEngine
	options *options.Options
}

// NewInstance opens a store rooted at the directory and engine named by
// opts, applying any overrides on top of the package defaults.
func NewInstance(service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := engine.Open(&defaultOpts, log)
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores value under key, overwriting whatever value key previously
// held.
func (i *Instance) Set(key, value string) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value stored under key. It returns
// engine.ErrKeyNotFound if key has no live entry.
func (i *Instance) Get(key string) (string, error) {
	return i.engine.Get(key)
}

// Remove deletes key. It returns engine.ErrKeyNotFound if key has no live
// entry.
func (i *Instance) Remove(key string) error {
	return i.engine.Remove(key)
}

// Close releases every resource this instance holds.
func (i *Instance) Close() error {
	return i.engine.Close()
}
