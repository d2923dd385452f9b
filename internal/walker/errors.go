package walker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMultipleCatalogFiles is matched by every StructuralError.
	ErrMultipleCatalogFiles = errors.New("more than one catalog file")

	// ErrInvalidRoot is returned when the walk root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid archive root")
)

// StructuralError reports a folder that holds more than one catalog file.
type StructuralError struct {
	Folder string
	Files  []string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s has more than one catalog file: %s", e.Folder, strings.Join(e.Files, ", "))
}

// Unwrap lets errors.Is match ErrMultipleCatalogFiles.
func (e *StructuralError) Unwrap() error {
	return ErrMultipleCatalogFiles
}
