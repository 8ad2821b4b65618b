package options

const (
	// DefaultDataDir is the directory used when no other directory is
	// configured. The CLI binaries default it to the current directory,
	// matching the source's behavior of operating relative to cwd.
	DefaultDataDir = "."

	// DefaultEngine is the storage engine selected when none is given.
	DefaultEngine = "kvs"

	// DefaultAddr is the address the server listens on and the client
	// dials when neither passes --addr.
	DefaultAddr = "127.0.0.1:4000"

	// DefaultCompactThreshold is the uncompacted-bytes threshold (1 MiB)
	// at which the writer compacts the log inline.
	DefaultCompactThreshold uint64 = 1 << 20
)

// defaultOptions holds the default configuration settings for a kvs instance.
var defaultOptions = Options{
	DataDir:          DefaultDataDir,
	Engine:           DefaultEngine,
	Addr:             DefaultAddr,
	CompactThreshold: DefaultCompactThreshold,
}

// NewDefaultOptions returns a copy of the default configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}
