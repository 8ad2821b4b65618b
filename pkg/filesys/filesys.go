// Package filesys provides the small set of file system utilities the
// storage layer needs: directory creation and existence checks.
package filesys

import (
	"errors"
	"os"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given
// permissions.
//
// If the path already exists:
//   - If 'force' is false, it returns nil and leaves the path untouched,
//     whether or not it is a directory.
//   - If 'force' is true, an existing directory has its permissions reset,
//     and an existing non-directory returns ErrIsNotDir.
//
// If stat fails for a reason other than the path not existing, that error
// is returned.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		return err
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// Exists checks if a file or directory at the given path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
