package weather

import "errors"

// Sentinel kinds for weather errors.
var (
	ErrUnknownPhase = errors.New("unknown climate phase")
)
