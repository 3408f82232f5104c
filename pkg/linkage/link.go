package linkage

import (
	"sort"
	"strconv"

	"github.com/agentstation/peakmap/pkg/constants"
)

// Origin tells where a link came from.
type Origin string

const (
	// OriginOverride marks a link from the manual override table.
	OriginOverride Origin = "override"

	// OriginMatch marks a computed link.
	OriginMatch Origin = "match"
)

// Link connects an anchor record to at most one target record. An override
// link with an empty TargetID records a known non-match.
type Link struct {
	SourceID   string  `json:"source_id" yaml:"source_id"`
	TargetID   string  `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	TargetName string  `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Origin     Origin  `json:"origin" yaml:"origin"`
}

// LinkMap maps anchor ids to their link.
type LinkMap map[string]Link

// Target returns the linked target id of sourceID. ok is false when there
// is no link or the link is a known non-match.
func (m LinkMap) Target(sourceID string) (targetID string, ok bool) {
	l, found := m[sourceID]
	if !found || l.TargetID == "" {
		return "", false
	}
	return l.TargetID, true
}

// Sorted returns the links ordered by source id.
func (m LinkMap) Sorted() []Link {
	out := make([]Link, 0, len(m))
	for _, l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

// ReportHeader is the header of a link report table.
var ReportHeader = []string{"source_id", "target_id", "target_name", "similarity", "origin"}

// Report renders the links as link report rows, ordered by source id.
func (m LinkMap) Report() [][]string {
	links := m.Sorted()
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		sim := ""
		if l.Origin == OriginMatch {
			sim = strconv.FormatFloat(l.Similarity, 'f', constants.DecimalPlaces, 64)
		}
		rows = append(rows, []string{l.SourceID, l.TargetID, l.TargetName, sim, string(l.Origin)})
	}
	return rows
}
