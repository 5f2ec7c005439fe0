package schedule

import "errors"

// Sentinel kinds for schedule scraping errors.
var (
	ErrNoGamesTable = errors.New("games table not found")
	ErrStatus       = errors.New("unexpected schedule page status")
)
