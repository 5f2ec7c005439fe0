package blend

import "errors"

// Sentinel kinds for blend errors.
var (
	ErrNoTables      = errors.New("no season tables to blend")
	ErrWeightCount   = errors.New("season weight count does not match table count")
	ErrInvalidWeight = errors.New("invalid season weight")
	ErrMissingKey    = errors.New("key column missing")
)
