package util

import (
	"os"

	"github.com/pkg/errors"
)

// CreateDirectoryIfNotExists creates a directory unless it already exists
func CreateDirectoryIfNotExists(path string, mode os.FileMode) error {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat directory: %s", path)
		}

		if err := os.MkdirAll(path, mode); err != nil {
			return errors.Wrapf(err, "failed to create directory: %s", path)
		}
	}

	return nil
}
