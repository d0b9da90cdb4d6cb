package parser

import "errors"

// Sentinel kinds for parser errors.
var (
	// ErrMalformedRecord marks a raw record the caller should skip.
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidDate     = errors.New("invalid date")
)
