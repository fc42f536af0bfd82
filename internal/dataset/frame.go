package dataset

import (
	"strconv"
	"strings"
)

// Frame is the in-memory, read-only data table: rows are samples, columns
// are attributes. Cells are kept as raw strings; numeric interpretation
// happens at point of use.
type Frame struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewFrame builds a frame and its column index. Ragged rows are padded or
// truncated to the header width.
func NewFrame(columns []string, rows [][]string) *Frame {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	for i, row := range rows {
		if len(row) == len(columns) {
			continue
		}
		fixed := make([]string, len(columns))
		copy(fixed, row)
		rows[i] = fixed
	}
	return &Frame{Columns: columns, Rows: rows, index: idx}
}

// RowCount returns the number of sample rows
func (f *Frame) RowCount() int {
	return len(f.Rows)
}

// HasColumn reports whether the frame has a column named col
func (f *Frame) HasColumn(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Value returns the trimmed cell at (row, col); ok is false when the
// column does not exist or the cell is empty/missing.
func (f *Frame) Value(row int, col string) (string, bool) {
	i, ok := f.index[col]
	if !ok || row < 0 || row >= len(f.Rows) {
		return "", false
	}
	v := strings.TrimSpace(f.Rows[row][i])
	if IsMissing(v) {
		return "", false
	}
	return v, true
}

// Column returns all non-missing values of col in row order
func (f *Frame) Column(col string) ([]string, bool) {
	i, ok := f.index[col]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		v := strings.TrimSpace(row[i])
		if IsMissing(v) {
			continue
		}
		out = append(out, v)
	}
	return out, true
}

// IsMissing reports whether a raw cell should be treated as absent
func IsMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "n/a", "nan", "null", "none", "[not available]":
		return true
	}
	return false
}

// ParseNumeric parses a cell as a number; ok is false for missing or
// non-numeric cells.
func ParseNumeric(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
