// Package identity guards a data directory against being opened by two
// different storage engines across restarts. The first Open of a directory
// stamps it with an "identity" file naming the requested engine, before that
// engine itself is opened; every later Open checks that file and refuses to proceed on
// a mismatch rather than letting a second engine misinterpret the first
// one's segment files.
package identity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	pkgerrors "github.com/iamNilotpal/kvs/pkg/errors"
)

// fileName is the fixed name of the identity marker within a data directory.
const fileName = "identity"

// Check verifies dir's identity file agrees with engine, writing a fresh one
// atomically if dir has never been opened before.
func Check(dir, engine string) error {
	path := filepath.Join(dir, fileName)

	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return pkgerrors.ClassifyFileOpenError(err, path, fileName)
		}
		if writeErr := atomic.WriteFile(path, strings.NewReader(engine)); writeErr != nil {
			return pkgerrors.NewStorageError(
				writeErr, pkgerrors.ErrorCodeIO, "failed to write identity file",
			).WithPath(path)
		}
		return nil
	}

	recorded := strings.TrimSpace(string(existing))
	if recorded != engine {
		return pkgerrors.NewStorageError(
			nil, pkgerrors.ErrorCodeEngineMismatch, "data directory was created by a different engine",
		).WithPath(path).WithDetail("recorded_engine", recorded).WithDetail("requested_engine", engine)
	}
	return nil
}
