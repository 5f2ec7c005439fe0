package noaa

import "errors"

// Sentinel kinds for forecast client errors.
var (
	ErrStatus        = errors.New("unexpected forecast status")
	ErrNoForecastURL = errors.New("points response has no forecast url")
)
