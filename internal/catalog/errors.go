package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFiles is returned when a catalog lists no files. Such an item is
	// skipped: it contributes neither an item nor a collection fragment.
	ErrNoFiles = errors.New("no files listed")

	// ErrNoItemID is returned when the identifier has no "-" separating the
	// collection id from the item id.
	ErrNoItemID = errors.New("identifier has no item id")
)

// ExtractionError reports a catalog file that could not be turned into an item.
type ExtractionError struct {
	// Path is the catalog file.
	Path string

	// Err is the underlying parse or validation error.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
