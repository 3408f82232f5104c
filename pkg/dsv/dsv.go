// Package dsv reads and writes the pipe-delimited tables exchanged with the
// ETL collaborators. Tables carry a header row; an empty field is null.
package dsv

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
)

// Delimiter separates fields.
const Delimiter = '|'

// Table is a parsed delimited table.
type Table struct {
	Name    string
	Header  []string
	Rows    []Row
	Skipped []Skip
	index   map[string]int
}

// Row is one data row. Lookups go through the table header.
type Row struct {
	Line   int
	fields []string
	index  map[string]int
}

// Skip records a row that could not be used.
type Skip struct {
	Line   int
	Reason string
}

// Get returns the value of column col and whether it is non-null. Missing
// columns and empty fields are null.
func (r Row) Get(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) || r.fields[i] == "" {
		return "", false
	}
	return r.fields[i], true
}

// Value returns the value of column col, or "" when null.
func (r Row) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Has reports whether the table header contains every column.
func (t *Table) Has(cols ...string) bool {
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			return false
		}
	}
	return true
}

// Require returns a validation error naming the first missing column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			return &errors.ValidationError{
				Field:   c,
				Message: fmt.Sprintf("column missing from %s", t.Name),
			}
		}
	}
	return nil
}

// Read parses a table from r. name labels the table in errors. Rows with
// more fields than the header are skipped and recorded in Table.Skipped;
// short rows read their missing trailing fields as null.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, &errors.ParseError{Format: "dsv", File: name, Message: "missing header row"}
		}
		return nil, errors.WrapParse("dsv", name, err)
	}

	t := &Table{Name: name, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		t.Header = append(t.Header, h)
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		fields, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				t.Skipped = append(t.Skipped, Skip{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, errors.WrapParse("dsv", name, err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) > len(t.Header) {
			t.Skipped = append(t.Skipped, Skip{
				Line:   line,
				Reason: fmt.Sprintf("%d fields, header has %d", len(fields), len(t.Header)),
			})
			continue
		}
		t.Rows = append(t.Rows, Row{Line: line, fields: fields, index: t.index})
	}

	return t, nil
}

// ReadFile opens and parses the table at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return Read(f, path)
}

// Writer writes a delimited table.
type Writer struct {
	cw      *csv.Writer
	columns int
}

// NewWriter writes header to w and returns a Writer for the rows.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	return &Writer{cw: cw, columns: len(header)}, nil
}

// Write writes one row. It must have as many fields as the header.
func (w *Writer) Write(fields ...string) error {
	if len(fields) != w.columns {
		return fmt.Errorf("dsv: row has %d fields, header has %d", len(fields), w.columns)
	}
	return w.cw.Write(fields)
}

// Flush flushes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// WriteFile writes a whole table to path.
func WriteFile(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions) //nolint:gosec // path comes from configuration
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	w, err := NewWriter(f, header)
	if err == nil {
		for _, row := range rows {
			if err = w.Write(row...); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.WrapIO("write", path, err)
}
