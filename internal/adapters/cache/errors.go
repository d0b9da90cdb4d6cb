package cache

import "errors"

var (
	// ErrNoLoader is returned by NewEventsCache when no loader is given.
	ErrNoLoader = errors.New("events cache: nil loader")
	// ErrInvalidSchedule wraps cron expression parse failures.
	ErrInvalidSchedule = errors.New("events cache: invalid schedule")
)
