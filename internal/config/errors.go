package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateSource. Callers match them with errors.Is.
var (
	// ErrNoDataPath is returned when no archive root is given.
	ErrNoDataPath = errors.New("no data path specified: use --data or PDSCLOAD_DATA_PATH")

	// ErrNoTargetPath is returned when a load has nowhere to write.
	ErrNoTargetPath = errors.New("no target path specified: use --target or PDSCLOAD_TARGET_PATH")

	// ErrInvalidTargetKind is returned for target kinds other than device and site.
	ErrInvalidTargetKind = errors.New("invalid target kind: must be device or site")

	// ErrNoContentBase is returned when a device load cannot find the viewer.
	ErrNoContentBase = errors.New("no content base path specified: device loads need --content-base")

	// ErrTargetInsideData is returned when the target lies within the data path.
	ErrTargetInsideData = errors.New("target path must not be inside the data path")

	// ErrInvalidConcurrency is returned when the copy concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid copy concurrency: must be positive")

	// ErrInvalidThumbnailSize is returned when thumbnails are enabled with a
	// size that is not positive.
	ErrInvalidThumbnailSize = errors.New("invalid thumbnail size: must be positive")

	// ErrInvalidExcludePattern is returned for malformed exclude globs.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")
)
