package installer

import (
	"errors"
	"fmt"
)

// ErrMissingSource is wrapped by errors about source files or folders that
// are listed in the index but absent on disk.
var ErrMissingSource = errors.New("missing source")

// MissingFileError reports a file listed in an item's catalog that could not
// be found in the item's folder.
type MissingFileError struct {
	// Item is "collectionId/itemId".
	Item string

	// Path is the source path that was looked up.
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s missing file: %s", e.Item, e.Path)
}

// Unwrap returns ErrMissingSource.
func (e *MissingFileError) Unwrap() error {
	return ErrMissingSource
}
