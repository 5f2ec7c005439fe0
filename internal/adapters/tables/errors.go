package tables

import "errors"

// Sentinel kinds for table errors.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrNoHeader      = errors.New("table has no header row")
	ErrBadValue      = errors.New("unparseable cell")
	ErrDuplicateRow  = errors.New("duplicate row")
)
