package alignment

import "errors"

// Sentinel kinds for alignment errors.
var (
	ErrUnknownMode = errors.New("unknown alignment mode")
)
