package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotLoaded   = errors.New("inputs not loaded")
	ErrUnknownWeek = errors.New("week not on the schedule")
)
