package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/duration"
)

// Column is a named text column written before a matrix.
type Column struct {
	Name   string
	Values []string
}

// WriteMatrix writes a numeric matrix under columns, preceded by lead columns.
func WriteMatrix(w io.Writer, columns []string, x [][]float64, lead ...Column) error {
	header := make([]string, 0, len(lead)+len(columns))
	for _, c := range lead {
		if len(c.Values) != len(x) {
			return fmt.Errorf("%w: column %s has %d values for %d rows", ErrMalformed, c.Name, len(c.Values), len(x))
		}
		header = append(header, c.Name)
	}
	header = append(header, columns...)

	rows := make([][]string, len(x))
	for i, vec := range x {
		if len(vec) != len(columns) {
			return fmt.Errorf("%w: row %d has %d values for %d columns", ErrMalformed, i, len(vec), len(columns))
		}
		row := make([]string, 0, len(header))
		for _, c := range lead {
			row = append(row, c.Values[i])
		}
		for _, v := range vec {
			row = append(row, duration.Format(v))
		}
		rows[i] = row
	}
	return writeTable(w, header, rows)
}

// WriteTarget writes a single integer column.
func WriteTarget(w io.Writer, name string, y []int) error {
	rows := make([][]string, len(y))
	for i, v := range y {
		rows[i] = []string{strconv.Itoa(v)}
	}
	return writeTable(w, []string{name}, rows)
}

// WriteVocabulary writes encoder categories one per row.
func WriteVocabulary(w io.Writer, name string, categories []string) error {
	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{c}
	}
	return writeTable(w, []string{name}, rows)
}

// ReadVocabulary reads the categories written by WriteVocabulary.
func ReadVocabulary(r io.Reader) ([]string, error) {
	f, err := readFrame(r, TableVocabulary)
	if err != nil {
		return nil, err
	}
	if len(f.header) != 1 {
		return nil, fmt.Errorf("%w: %s: want one column, got %d", ErrMalformed, f.table, len(f.header))
	}
	values := f.cells(f.names[0])
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
