// Package table converts pipeline results to table data for CLI commands.
package table

import (
	"strconv"

	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/regions"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Links converts a link map to table format, ordered by source id.
func Links(links linkage.LinkMap) Data {
	rows := links.Report()
	for _, row := range rows {
		if row[1] == "" {
			row[1] = "-"
		}
	}
	return Data{
		Headers: []string{"Peak", "Target", "Target Name", "Similarity", "Origin"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,
			AlignLeft,
			AlignLeft,
			AlignRight,
			AlignLeft,
		},
	}
}

// Regions converts a region set to table format in id order.
func Regions(set *regions.Set) Data {
	rows := set.Table()
	for _, row := range rows {
		if row[1] == "" {
			row[1] = "-"
		}
	}
	return Data{
		Headers:         []string{"Region", "Parent", "Shadowed", "Area"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignRight},
	}
}

// Summary holds the counts shown after a build.
type Summary struct {
	Stats   catalog.Stats
	Linkage []*linkage.Result
}

// SummaryData converts a build summary to a two column table.
func SummaryData(s Summary) Data {
	rows := [][]string{
		{"Peaks", strconv.Itoa(s.Stats.Peaks)},
		{"With coordinates", strconv.Itoa(s.Stats.WithCoordinates)},
		{"Approximate", strconv.Itoa(s.Stats.Approximate)},
		{"With region", strconv.Itoa(s.Stats.WithRegion)},
		{"Region overrides", strconv.Itoa(s.Stats.RegionOverrides)},
	}
	for _, r := range s.Linkage {
		if r == nil {
			continue
		}
		rows = append(rows,
			[]string{r.Pair + " matched", strconv.Itoa(r.Matched)},
			[]string{r.Pair + " overridden", strconv.Itoa(r.Overridden)},
			[]string{r.Pair + " below threshold", strconv.Itoa(r.BelowThreshold)},
			[]string{r.Pair + " unmatched", strconv.Itoa(r.Unmatched)},
		)
	}
	return Data{
		Headers:         []string{"Metric", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// NameRow is one normalized name.
type NameRow struct {
	Raw   string `json:"raw" yaml:"raw"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Names converts normalized names to table format.
func Names(names []NameRow) Data {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		name := n.Name
		if name == "" {
			name = "<empty>"
		}
		rows = append(rows, []string{n.Raw, name, n.Title})
	}
	return Data{
		Headers: []string{"Raw", "Name", "Title"},
		Rows:    rows,
	}
}
