// Package authority ranks the sources that may supply a catalog field.
package authority

import (
	"path"
	"sort"
	"strings"

	"github.com/agentstation/peakmap/pkg/types"
)

// Authority ranks sources per field and resource type.
type Authority interface {
	// Ranked returns the sources for a field, most authoritative first.
	Ranked(field string, resourceType types.ResourceType) []types.SourceID

	// Priority returns the priority of src for a field, or 0 when src has
	// no say over it.
	Priority(field string, resourceType types.ResourceType, src types.SourceID) int
}

// Field gives a source a priority over the fields matching Path. Path is a
// field name, a glob, or a prefix ending in "*".
type Field struct {
	Path     string         `json:"path" yaml:"path"`
	Source   types.SourceID `json:"source" yaml:"source"`
	Priority int            `json:"priority" yaml:"priority"`
}

// Matches reports whether the rule covers field.
func (f Field) Matches(field string) bool {
	if prefix, ok := strings.CutSuffix(f.Path, "*"); ok && strings.HasPrefix(field, prefix) {
		return true
	}
	ok, err := path.Match(f.Path, field)
	return err == nil && ok
}

// Table is an Authority backed by rule lists per resource type.
type Table map[types.ResourceType][]Field

// New returns the standard table. The survey carries the most precise
// summit positions and the registry is the fallback. Identity fields come
// from the anchor.
func New() Table {
	return Table{
		types.ResourceTypePeak: {
			{Path: "Name", Source: types.AnchorID, Priority: 100},
			{Path: "Height", Source: types.AnchorID, Priority: 100},
			{Path: "Coordinates", Source: types.SurveyID, Priority: 100},
			{Path: "Coordinates", Source: types.RegistryID, Priority: 90},
			{Path: "Notes", Source: types.SurveyID, Priority: 100},
			{Path: "Notes", Source: types.RegistryID, Priority: 90},
			{Path: "AltNames", Source: types.AnchorID, Priority: 100},
			{Path: "AltNames", Source: types.SurveyID, Priority: 90},
			{Path: "AltNames", Source: types.RegistryID, Priority: 80},
		},
		types.ResourceTypeRegion: {
			{Path: "Geometry", Source: types.AnchorID, Priority: 100},
		},
	}
}

// Ranked orders the matching sources by priority. Equal priorities keep
// table order and each source appears once.
func (t Table) Ranked(field string, resourceType types.ResourceType) []types.SourceID {
	var matched []Field
	for _, f := range t[resourceType] {
		if f.Matches(field) {
			matched = append(matched, f)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Priority > matched[j].Priority })

	var ranked []types.SourceID
	seen := make(map[types.SourceID]bool, len(matched))
	for _, f := range matched {
		if !seen[f.Source] {
			seen[f.Source] = true
			ranked = append(ranked, f.Source)
		}
	}
	return ranked
}

// Priority returns the highest priority src holds over field.
func (t Table) Priority(field string, resourceType types.ResourceType, src types.SourceID) int {
	best := 0
	for _, f := range t[resourceType] {
		if f.Source == src && f.Matches(field) && f.Priority > best {
			best = f.Priority
		}
	}
	return best
}
