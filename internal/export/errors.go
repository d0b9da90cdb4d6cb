package export

import "errors"

// Sentinel errors for the export package.
var (
	ErrMissingEvent = errors.New("missing event id")
	ErrWriteReport  = errors.New("write report failed")
)
