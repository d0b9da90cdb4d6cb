package service

import "errors"

// Sentinel error kinds returned by Service. Callers map them with errors.Is.
var (
	ErrInvalidEventID = errors.New("invalid event id")
	ErrEventNotFound  = errors.New("event not found")
	ErrUpstream       = errors.New("upstream unavailable")
)
