// Package blend merges several seasons of a player stat table into one
// weighted profile.
package blend

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// DefaultWeights are the season weights, most recent first.
var DefaultWeights = []float64{0.5, 0.3, 0.2}

// Table is a header plus string rows, as read from a CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

type season struct {
	cols map[string]int
	rows map[string][]string
}

func index(t Table, key string) (season, error) {
	k := t.Column(key)
	if k < 0 {
		return season{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	s := season{
		cols: make(map[string]int, len(t.Header)),
		rows: make(map[string][]string, len(t.Rows)),
	}
	for i, h := range t.Header {
		s.cols[strings.TrimSpace(h)] = i
	}
	for _, row := range t.Rows {
		if k >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[k])
		if id == "" {
			continue
		}
		if _, dup := s.rows[id]; !dup {
			s.rows[id] = row
		}
	}
	return s, nil
}

func (s season) value(id, col string) (string, bool) {
	row, ok := s.rows[id]
	if !ok {
		return "", false
	}
	i, ok := s.cols[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// Blend merges seasons, most recent first, keyed by the key column.
//
// The output keeps the players and column order of the most recent season,
// restricted to columns every season has. A numeric cell becomes the
// weighted mean of the player's numeric values over the seasons that list
// the player, so weights renormalize over the seasons present. Non-numeric
// cells are taken from the most recent season.
func Blend(tables []Table, weights []float64, key string) (Table, error) {
	if len(tables) == 0 {
		return Table{}, ErrNoTables
	}
	if len(weights) != len(tables) {
		return Table{}, fmt.Errorf("%w: %d weights for %d tables", ErrWeightCount, len(weights), len(tables))
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return Table{}, fmt.Errorf("%w: %g", ErrInvalidWeight, w)
		}
	}

	seasons := make([]season, len(tables))
	for i, t := range tables {
		s, err := index(t, key)
		if err != nil {
			return Table{}, fmt.Errorf("season %d: %w", i, err)
		}
		seasons[i] = s
	}

	header := commonColumns(tables[0].Header, seasons)
	out := Table{Header: header}
	keyCol := tables[0].Column(key)
	seen := make(map[string]struct{}, len(tables[0].Rows))

	xs := make([]float64, 0, len(tables))
	ws := make([]float64, 0, len(tables))
	for _, row := range tables[0].Rows {
		if keyCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[keyCol])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		blended := make([]string, len(header))
		for c, col := range header {
			latest, _ := seasons[0].value(id, col)
			if col == key {
				blended[c] = id
				continue
			}
			if _, err := strconv.ParseFloat(latest, 64); err != nil {
				blended[c] = latest
				continue
			}
			xs, ws = xs[:0], ws[:0]
			for s := range seasons {
				raw, ok := seasons[s].value(id, col)
				if !ok {
					continue
				}
				v, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					continue
				}
				xs = append(xs, v)
				ws = append(ws, weights[s])
			}
			if sum(ws) == 0 {
				blended[c] = latest
				continue
			}
			blended[c] = strconv.FormatFloat(stat.Mean(xs, ws), 'f', -1, 64)
		}
		out.Rows = append(out.Rows, blended)
	}
	return out, nil
}

func commonColumns(header []string, seasons []season) []string {
	var out []string
	for _, h := range header {
		h = strings.TrimSpace(h)
		shared := true
		for _, s := range seasons[1:] {
			if _, ok := s.cols[h]; !ok {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, h)
		}
	}
	return out
}

func sum(ws []float64) float64 {
	var t float64
	for _, w := range ws {
		t += w
	}
	return t
}
