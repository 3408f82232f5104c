package table

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/peakmap/pkg/provenance"
)

// Provenance converts the field provenance of one peak to table format.
// Entries of a field are ordered by authority, highest first, and the
// first entry is marked current.
func Provenance(fieldProvenance map[string][]provenance.Provenance) Data {
	fields := make([]string, 0, len(fieldProvenance))
	for field := range fieldProvenance {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var rows [][]string
	for _, field := range fields {
		history := append([]provenance.Provenance(nil), fieldProvenance[field]...)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Authority > history[j].Authority
		})

		for i, entry := range history {
			name, current := "", ""
			if i == 0 {
				name, current = field, "\u2192"
			}
			rows = append(rows, []string{
				name,
				current,
				formatValue(entry.Value),
				string(entry.Source),
				fmt.Sprintf("%d", entry.Authority),
				fmt.Sprintf("%.4f", entry.Similarity),
				formatTimestamp(entry.Timestamp),
				entry.Reason,
			})
		}
	}

	return Data{
		Headers: []string{"Field", "Curr", "Value", "Source", "Authority", "Similarity", "When", "Reason"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,   // Field
			AlignCenter, // Curr
			AlignLeft,   // Value
			AlignLeft,   // Source
			AlignRight,  // Authority
			AlignRight,  // Similarity
			AlignLeft,   // When
			AlignLeft,   // Reason
		},
	}
}

// formatValue renders simple values as-is and anything else as YAML.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "<nil>"
	case string:
		if v == "" {
			return "<empty>"
		}
		return v
	case int, int64, bool:
		return fmt.Sprintf("%v", v)
	case float64:
		return fmt.Sprintf("%.7f", v)
	}

	out, err := yaml.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return strings.TrimSuffix(string(out), "\n")
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
