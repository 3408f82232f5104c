// Package output writes command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/peakmap/internal/cmd/table"
)

// Format names an output format.
type Format string

// Output formats. Wide is the table format without cell truncation.
const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value. The empty string is allowed and
// means the format is chosen from the output stream.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatTable, FormatWide, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of: table, wide, json, yaml", s)
}

// resolve picks table for terminals and JSON for pipes and files when no
// format was given.
func resolve(f Format, w io.Writer) Format {
	if f != "" {
		return f
	}
	if file, ok := w.(*os.File); ok {
		fd := file.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return FormatTable
		}
	}
	return FormatJSON
}

// Formatter writes data in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for f. Unknown formats get the table
// formatter.
func NewFormatter(f Format) Formatter {
	switch f {
	case FormatJSON:
		return jsonFormatter{}
	case FormatYAML:
		return yamlFormatter{}
	default:
		return tableFormatter{wide: f == FormatWide}
	}
}

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// tableFormatter renders table.Data, structs and slices of structs. Other
// values are written as JSON.
type tableFormatter struct {
	wide bool
}

// narrowColumnWidth caps cell width in the table format.
const narrowColumnWidth = 48

var alignments = map[table.Align]tw.Align{
	table.AlignDefault: tw.Skip,
	table.AlignLeft:    tw.AlignLeft,
	table.AlignCenter:  tw.AlignCenter,
	table.AlignRight:   tw.AlignRight,
}

func (f tableFormatter) Format(w io.Writer, data any) error {
	d, ok := data.(table.Data)
	if !ok {
		p := toTableData(data)
		if p == nil {
			return jsonFormatter{}.Format(w, data)
		}
		d = *p
	}

	var cfg tablewriter.Config
	if len(d.ColumnAlignment) > 0 {
		per := make([]tw.Align, len(d.ColumnAlignment))
		for i, a := range d.ColumnAlignment {
			per[i] = alignments[a]
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: per}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: per}
	}
	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))

	if len(d.Headers) > 0 {
		tbl.Header(anySlice(d.Headers, -1)...)
	}
	width := narrowColumnWidth
	if f.wide {
		width = -1
	}
	for _, row := range d.Rows {
		if err := tbl.Append(anySlice(row, width)...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

// anySlice converts cells for tablewriter, truncating them to width runes
// unless width is negative.
func anySlice(cells []string, width int) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		if width >= 0 {
			c = truncate(c, width)
		}
		out[i] = c
	}
	return out
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// toTableData converts a struct or a non-empty slice of structs to table
// data. It returns nil for anything else.
func toTableData(data any) *table.Data {
	v := reflect.ValueOf(data)
	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		typ := v.Index(0).Type()
		d := &table.Data{Headers: make([]string, typ.NumField())}
		for i := range d.Headers {
			d.Headers[i] = headerName(typ.Field(i))
		}
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			row := make([]string, elem.NumField())
			for j := range row {
				row[j] = cellValue(elem.Field(j))
			}
			d.Rows = append(d.Rows, row)
		}
		return d
	case v.Kind() == reflect.Struct:
		d := &table.Data{Headers: []string{"Property", "Value"}}
		for i := 0; i < v.NumField(); i++ {
			d.Rows = append(d.Rows, []string{headerName(v.Type().Field(i)), cellValue(v.Field(i))})
		}
		return d
	}
	return nil
}

var titleCaser = cases.Title(language.English)

// headerName is the title-cased json name of a field, or its Go name.
func headerName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// cellValue formats a field, dereferencing pointers. Nil renders as "-".
func cellValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v.Interface())
}
