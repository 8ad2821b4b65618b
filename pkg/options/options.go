// Package options provides data structures and functions for configuring
// the kvs database. It defines the parameters that control storage behavior,
// engine selection, and the network address the server binds to, using the
// functional-options pattern so callers only override what they need.
package options

import "strings"

// Options defines the configuration parameters for a kvs instance. It
// controls where data lives on disk, which storage engine backs it, the
// address the server listens on, and when the writer compacts its log.
type Options struct {
	// DataDir specifies the base path where segment files (and the
	// identity file) are stored.
	//
	// Default: "."
	DataDir string `json:"dataDir"`

	// Engine selects the storage engine: "kvs" for the bitcask-style
	// segmented log, or "sled" for the bbolt-backed alternative.
	//
	// Default: "kvs"
	Engine string `json:"engine"`

	// Addr is the TCP address the server listens on, or the client dials.
	//
	// Default: "127.0.0.1:4000"
	Addr string `json:"addr"`

	// CompactThreshold is the number of uncompacted bytes the writer will
	// tolerate before running compaction inline inside the triggering
	// set/remove call.
	//
	// Default: 1 << 20 (1 MiB)
	CompactThreshold uint64 `json:"compactThreshold"`
}

// OptionFunc is a function type that modifies the kvs configuration.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field on the Options to its default value.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the primary data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithEngine selects the storage engine by name ("kvs" or "sled"). Any
// non-empty name is stored as given, without checking it against that set;
// internal/engine.Open is what rejects an unknown engine name.
func WithEngine(engine string) OptionFunc {
	return func(o *Options) {
		engine = strings.TrimSpace(engine)
		if engine != "" {
			o.Engine = engine
		}
	}
}

// WithAddr sets the TCP address used for the server listener or client dial.
func WithAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.Addr = addr
		}
	}
}

// WithCompactThreshold overrides the uncompacted-bytes threshold that
// triggers inline compaction. Tests shrink this to force compaction on
// small datasets; production deployments rarely need to change it.
func WithCompactThreshold(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactThreshold = bytes
		}
	}
}
