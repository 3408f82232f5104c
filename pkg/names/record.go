package names

import (
	"strings"

	"github.com/agentstation/peakmap/pkg/constants"
)

// Record is one name variant of a source record.
type Record struct {
	// SourceID is the id of the source record the name belongs to.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Sequence is the 1-based position of the variant; 1 is the primary name.
	Sequence int `json:"seq" yaml:"seq"`

	// FullName is the variant as written in the source.
	FullName string `json:"full_name" yaml:"full_name"`

	// Name is the normalized name.
	Name string `json:"name" yaml:"name"`

	// Title is the space-joined qualifier tokens.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Variants splits comma-separated name fields into trimmed, non-empty name
// variants. Fields are treated as one comma-separated list, so the first
// variant of the first non-empty field is the primary name. Variants longer
// than constants.MaxNameLength are dropped.
func Variants(fields ...string) []string {
	var out []string
	for _, part := range strings.Split(strings.Join(fields, ","), ",") {
		part = strings.TrimSpace(part)
		if part == "" || len(part) > constants.MaxNameLength {
			continue
		}
		out = append(out, part)
	}
	return out
}

// FromFields normalizes every variant of the name fields of one source record.
func (n *Normalizer) FromFields(sourceID string, fields ...string) []Record {
	variants := Variants(fields...)
	records := make([]Record, 0, len(variants))
	for i, v := range variants {
		name, title := n.Normalize(v)
		records = append(records, Record{
			SourceID: sourceID,
			Sequence: i + 1,
			FullName: v,
			Name:     name,
			Title:    title,
		})
	}
	return records
}

// FromFields normalizes name fields with the default Normalizer.
func FromFields(sourceID string, fields ...string) []Record {
	return Default().FromFields(sourceID, fields...)
}
