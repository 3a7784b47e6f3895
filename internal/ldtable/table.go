// Package ldtable reads tabulated limb-darkening coefficients, such as the
// results table downloaded from the ExoCTK limb-darkening calculator, and
// reduces them to the two numbers the quadratic law needs.
package ldtable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lightcurve/internal/monitoring"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("ldtable: missing column")
	// ErrNoRows is returned when no data rows remain to average.
	ErrNoRows = errors.New("ldtable: no rows")
)

// ProfileColumn names the column that tags each row with its law.
const ProfileColumn = "profile"

// Table is a whitespace-delimited coefficient table. The first
// non-comment line names the columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Load reads a table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open coefficient table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("ldtable: loaded %d rows from %s", len(t.Rows), path)
	return t, nil
}

// Parse reads a table from r. Blank lines and lines starting with '#' are
// ignored, as is a units or dashed separator line directly under the header.
func Parse(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	t := &Table{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if t.Columns == nil {
			t.Columns = fields
			continue
		}
		if len(t.Rows) == 0 && isUnitsLine(fields) {
			continue
		}
		if len(fields) != len(t.Columns) {
			return nil, fmt.Errorf("ldtable: line %d has %d fields, header has %d", lineNo, len(fields), len(t.Columns))
		}
		t.Rows = append(t.Rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ldtable: read: %w", err)
	}
	if t.Columns == nil {
		return nil, fmt.Errorf("ldtable: no header line")
	}
	return t, nil
}

// isUnitsLine reports whether a line holds no numbers at all, as the
// dashed separator and units rows do.
func isUnitsLine(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			return false
		}
	}
	return true
}

// index returns the position of the named column, or -1.
func (t *Table) index(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Filter returns the rows whose column equals value (case-insensitive).
func (t *Table) Filter(column, value string) (*Table, error) {
	idx := t.index(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
	}
	out := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if strings.EqualFold(row[idx], value) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// Column parses every value of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	idx := t.index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	vals := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("ldtable: row %d column %s: %w", i+1, name, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// Mean returns the mean of the named column.
func (t *Table) Mean(name string) (float64, error) {
	vals, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: column %s", ErrNoRows, name)
	}
	return stat.Mean(vals, nil), nil
}

// Quadratic returns the mean c1 and c2 coefficients of the quadratic-law
// rows. Tables without a profile column are assumed to be all quadratic.
func (t *Table) Quadratic() (u1, u2 float64, err error) {
	rows := t
	if t.index(ProfileColumn) >= 0 {
		rows, err = t.Filter(ProfileColumn, "quadratic")
		if err != nil {
			return 0, 0, err
		}
	}
	if u1, err = rows.Mean("c1"); err != nil {
		return 0, 0, err
	}
	if u2, err = rows.Mean("c2"); err != nil {
		return 0, 0, err
	}
	return u1, u2, nil
}
