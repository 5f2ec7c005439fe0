package model

import "strings"

// Scheme is a defense's coverage tendency for a week.
type Scheme int

// Coverage schemes.
const (
	Unknown Scheme = iota
	Man
	Zone
)

func (s Scheme) String() string {
	switch s {
	case Man:
		return "man"
	case Zone:
		return "zone"
	default:
		return "unknown"
	}
}

// ParseScheme maps "man"/"zone" to a Scheme; anything else is Unknown.
func ParseScheme(s string) Scheme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "man":
		return Man
	case "zone":
		return Zone
	}
	return Unknown
}

// SchemeFromRates labels a week as man when the man rate is at least the
// zone rate. Ties resolve to man.
func SchemeFromRates(manRate, zoneRate float64) Scheme {
	if manRate >= zoneRate {
		return Man
	}
	return Zone
}
