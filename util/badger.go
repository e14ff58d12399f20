package util

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
)

// OpenBadger opens (creating if necessary) a badger database at a given directory
func OpenBadger(dir string) (*badger.DB, error) {
	if err := CreateDirectoryIfNotExists(dir, 0755); err != nil {
		return nil, err
	}

	return badger.Open(badger.DefaultOptions(dir))
}

// OpenRandomBadger opens a badger database inside a temporary
// directory, returning the database along with its path
// NOTE: the caller is responsible for removing the directory
func OpenRandomBadger() (*badger.DB, string, error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("kbguard-badger-%s", NewULID()))

	db, err := OpenBadger(dir)
	if err != nil {
		return nil, "", err
	}

	return db, dir, nil
}
