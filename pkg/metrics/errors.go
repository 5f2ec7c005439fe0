package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrManagerNotInitialized = errors.New("metrics manager not initialized")
)
