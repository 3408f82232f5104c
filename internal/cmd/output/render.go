package output

import (
	"io"

	"github.com/agentstation/peakmap/internal/cmd/table"
)

// Render writes a command result to w. Table formats print tbl; json and
// yaml print raw. An empty format is chosen from w.
func Render(w io.Writer, format string, tbl table.Data, raw any) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	f = resolve(f, w)

	var data any = raw
	if f == FormatTable || f == FormatWide {
		data = tbl
	}
	return NewFormatter(f).Format(w, data)
}
