package projection

import "errors"

// Sentinel kinds for projection errors.
var (
	ErrOutOfOrder = errors.New("week recorded out of order")
)
