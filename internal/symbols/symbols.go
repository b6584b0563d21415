// Package symbols loads the decoded-symbol table produced alongside a capture.
//
// The table is plain text: one row per line, fields separated by any run of
// whitespace. Blank lines are skipped. Every row must have the same number of
// fields as the first one and every field must be a finite number. Only the
// first two columns are plotted; any further columns are kept in Rows.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"qosst-scope/internal/failure"
)

// Table is an ordered sequence of fixed-width numeric rows
type Table struct {
	Rows  [][]float64
	Width int
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the first n values of column c
func (t *Table) Column(c, n int) ([]float64, error) {
	if c < 0 || c >= t.Width {
		return nil, fmt.Errorf("%w: column %d requested from a table with %d columns", failure.ErrFormat, c, t.Width)
	}
	if n > len(t.Rows) {
		return nil, fmt.Errorf("%w: %d rows requested from a table with %d rows", failure.ErrFormat, n, len(t.Rows))
	}
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = t.Rows[k][c]
	}
	return out, nil
}

// Read parses a table from r and requires at least minRows rows
func Read(r io.Reader, minRows int) (*Table, error) {
	table := &Table{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if table.Width == 0 {
			table.Width = len(fields)
		} else if len(fields) != table.Width {
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d",
				failure.ErrFormat, line, len(fields), table.Width)
		}

		row := make([]float64, len(fields))
		for k, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %q is not a number",
					failure.ErrFormat, line, k+1, field)
			}
			// ParseFloat accepts nan and inf, which no decoder emits
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: line %d field %d: %q is not finite",
					failure.ErrFormat, line, k+1, field)
			}
			row[k] = v
		}
		table.Rows = append(table.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symbol table: %w", err)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: symbol table is empty", failure.ErrFormat)
	}
	if len(table.Rows) < minRows {
		return nil, fmt.Errorf("%w: symbol table has %d rows, need at least %d",
			failure.ErrFormat, len(table.Rows), minRows)
	}
	return table, nil
}

// ReadFile parses the symbol table at path
func ReadFile(path string, minRows int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", failure.ErrMissingFile, path, err)
	}
	defer file.Close()

	table, err := Read(file, minRows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// WriteFile writes rows as tab-separated text, one row per line
func WriteFile(path string, rows [][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create symbol table: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, row := range rows {
		for k, v := range row {
			if k > 0 {
				w.WriteByte('\t')
			}
			w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write symbol table: %w", err)
	}
	return file.Close()
}
