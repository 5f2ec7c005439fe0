package tables

import (
	"errors"
	"io/fs"
	"os"
)

// Status is a quality-control verdict for one input file.
type Status int

// Quality-control verdicts.
const (
	StatusOK Status = iota
	StatusMissing
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMissing:
		return "Missing"
	case StatusEmpty:
		return "Empty"
	default:
		return "Error"
	}
}

// Check is the verdict for one file.
type Check struct {
	Path   string
	Status Status
	Rows   int
	Err    error
}

// CheckFile reports whether path exists, parses as CSV, and has data rows.
func CheckFile(path string) Check {
	c := Check{Path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		c.Status = StatusMissing
		return c
	}
	t, err := ReadTable(path)
	switch {
	case errors.Is(err, ErrNoHeader):
		c.Status = StatusEmpty
	case err != nil:
		c.Status = StatusError
		c.Err = err
	case t.Len() == 0:
		c.Status = StatusEmpty
	default:
		c.Status = StatusOK
		c.Rows = t.Len()
	}
	return c
}

// CheckFiles runs CheckFile over paths in order.
func CheckFiles(paths ...string) []Check {
	out := make([]Check, 0, len(paths))
	for _, p := range paths {
		out = append(out, CheckFile(p))
	}
	return out
}

// AllOK reports whether every check passed.
func AllOK(checks []Check) bool {
	for _, c := range checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return true
}
