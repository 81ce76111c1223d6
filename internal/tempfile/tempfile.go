// Package tempfile hands out temporary files that are removed by a cleanup
// func the caller defers right after creation.
package tempfile

import (
	"fmt"
	"os"
)

// Write stores data in a new file under dir (os.TempDir when empty) whose
// name matches pattern as in os.CreateTemp.
func Write(dir, pattern string, data []byte) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, cleanup, nil
}

// Reserve returns the path of a new empty file for an external tool to
// overwrite.
func Reserve(dir, pattern string) (path string, cleanup func(), err error) {
	return Write(dir, pattern, nil)
}

// remove is idempotent so cleanup may run on every exit path
func remove(path string) {
	_ = os.Remove(path)
}
