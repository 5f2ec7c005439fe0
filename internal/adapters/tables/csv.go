// Package tables reads and writes the engine's CSV inputs and outputs.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/yaculator/internal/domain/blend"
)

// ReadTable reads a whole CSV file. The first record is the header.
func ReadTable(path string) (blend.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return blend.Table{}, err
	}
	defer func() { _ = f.Close() }()
	t, err := readTable(f)
	if err != nil {
		return blend.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func readTable(r io.Reader) (blend.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	hdr, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return blend.Table{}, ErrNoHeader
	}
	if err != nil {
		return blend.Table{}, fmt.Errorf("read header: %w", err)
	}
	// Spreadsheet exports often start with a byte order mark.
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\ufeff")
	}
	for i := range hdr {
		hdr[i] = strings.TrimSpace(hdr[i])
	}

	t := blend.Table{Header: hdr}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return blend.Table{}, fmt.Errorf("read row: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteTable writes t to path, creating parent directories.
func WriteTable(path string, t blend.Table) error {
	return writeFile(path, func(w io.Writer) error { return writeTable(w, t) })
}

func writeTable(w io.Writer, t blend.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// columns looks cells up by header name.
type columns struct {
	table string
	idx   map[string]int
}

func newColumns(table string, header []string) columns {
	c := columns{table: table, idx: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := c.idx[h]; !dup {
			c.idx[h] = i
		}
	}
	return c
}

func (c columns) has(name string) bool {
	_, ok := c.idx[name]
	return ok
}

// require fails when any of names is absent.
func (c columns) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s needs %s", ErrMissingColumn, c.table, strings.Join(missing, ", "))
	}
	return nil
}

// first returns the first of names present in the header.
func (c columns) first(names ...string) (string, bool) {
	for _, n := range names {
		if c.has(n) {
			return n, true
		}
	}
	return "", false
}

func (c columns) str(row []string, name string) string {
	i, ok := c.idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// num parses an optional numeric cell. Absent columns and blank cells read
// as zero.
func (c columns) num(row []string, name string) (float64, error) {
	s := c.str(row, name)
	if blank(s) {
		return 0, nil
	}
	return parseNum(name, s)
}

// need parses a required numeric cell. The column must already have passed
// require; a blank cell rejects the row.
func (c columns) need(row []string, name string) (float64, error) {
	s := c.str(row, name)
	if blank(s) {
		return 0, fmt.Errorf("%w: %s is blank", ErrBadValue, name)
	}
	return parseNum(name, s)
}

func blank(s string) bool {
	return s == "" || strings.EqualFold(s, "nan")
}

func parseNum(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, name, s)
	}
	return v, nil
}

// flag parses a boolean cell. Absent columns and blank cells read as false.
func (c columns) flag(row []string, name string) (bool, error) {
	s := strings.ToLower(c.str(row, name))
	switch s {
	case "", "0", "false", "no", "n", "f", "nan":
		return false, nil
	case "1", "true", "yes", "y", "t", "1.0":
		return true, nil
	}
	return false, fmt.Errorf("%w: %s=%q", ErrBadValue, name, s)
}

// week parses a week cell, accepting "3" and "3.0". ok is false for
// non-numeric weeks such as playoff rounds.
func week(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
