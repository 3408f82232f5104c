// Package sources adapts the parsed peak tables of the three sources to
// typed records.
//
// Each source has a Schema naming its id and name columns. The anchor
// table becomes a list of Anchor records in file order; the survey and
// registry tables become Secondary collections keyed by id.
//
// Example usage:
//
//	tables, err := sources.Load(ctx, sources.Paths{
//	    Anchor:   "hdb_peak.txt",
//	    Survey:   "osm_peak.txt",
//	    Registry: "mot_peak.txt",
//	})
//	if err != nil {
//	    return err
//	}
//	anchors := tables.Anchors.Records(names.Default())
package sources

import (
	"github.com/agentstation/peakmap/pkg/names"
	"github.com/agentstation/peakmap/pkg/types"
)

// Schema describes the columns of one source table.
type Schema struct {
	Source types.SourceID

	// ID is the identifier column.
	ID string

	// Names are the name columns, primary first.
	Names []string
}

// Column names shared by the survey and registry tables.
const (
	ColumnLongitude    = "longitude"
	ColumnLatitude     = "latitude"
	ColumnDMSLongitude = "dms_longitude"
	ColumnDMSLatitude  = "dms_latitude"
)

// Anchor table columns.
const (
	ColumnHeight   = "heightm"
	ColumnLocation = "location"
)

var (
	// AnchorSchema is the expedition archive peak table.
	AnchorSchema = Schema{Source: types.AnchorID, ID: "peakid", Names: []string{"pkname", "pkname2"}}

	// SurveySchema is the crowd-sourced survey peak table.
	SurveySchema = Schema{Source: types.SurveyID, ID: "peak_id", Names: []string{"peak_name", "alt_names"}}

	// RegistrySchema is the government registry peak table.
	RegistrySchema = Schema{Source: types.RegistryID, ID: "peak_number", Names: []string{"peak_name", "alt_names"}}
)

// SchemaFor returns the schema of a source.
func SchemaFor(id types.SourceID) (Schema, bool) {
	switch id {
	case types.AnchorID:
		return AnchorSchema, true
	case types.SurveyID:
		return SurveySchema, true
	case types.RegistryID:
		return RegistrySchema, true
	}
	return Schema{}, false
}

// Anchor is one expedition archive peak. Its id is the catalog peak id.
type Anchor struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	AltName  string `json:"alt_name,omitempty" yaml:"alt_name,omitempty"`
	Height   string `json:"height,omitempty" yaml:"height,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Line     int    `json:"-" yaml:"-"`
}

// Anchors is the anchor table in file order.
type Anchors []Anchor

// Records normalizes the name variants of every anchor peak.
func (as Anchors) Records(n *names.Normalizer) []names.Record {
	var out []names.Record
	for _, a := range as {
		out = append(out, n.FromFields(a.ID, a.Name, a.AltName)...)
	}
	return out
}

// Coordinates is a position in decimal degrees with the source's own
// degrees-minutes-seconds rendering, which may be empty.
type Coordinates struct {
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	DMSLongitude string  `json:"dms_longitude,omitempty" yaml:"dms_longitude,omitempty"`
	DMSLatitude  string  `json:"dms_latitude,omitempty" yaml:"dms_latitude,omitempty"`
}

// Peak is one survey or registry record.
type Peak struct {
	Source      types.SourceID `json:"source" yaml:"source"`
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	AltNames    string         `json:"alt_names,omitempty" yaml:"alt_names,omitempty"`
	Coordinates *Coordinates   `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Line        int            `json:"-" yaml:"-"`
}

// NameFields returns the raw name fields, primary first.
func (p Peak) NameFields() []string {
	return []string{p.Name, p.AltNames}
}

// Secondary is a survey or registry table keyed by record id.
type Secondary struct {
	Source types.SourceID
	Peaks  []Peak
	byID   map[string]int
}

// NewSecondary indexes peaks by id. A later peak with the same id replaces
// an earlier one.
func NewSecondary(source types.SourceID, peaks []Peak) *Secondary {
	s := &Secondary{Source: source, byID: make(map[string]int, len(peaks))}
	for _, p := range peaks {
		if i, ok := s.byID[p.ID]; ok {
			s.Peaks[i] = p
			continue
		}
		s.byID[p.ID] = len(s.Peaks)
		s.Peaks = append(s.Peaks, p)
	}
	return s
}

// Get returns the peak with the given id.
func (s *Secondary) Get(id string) (Peak, bool) {
	if s == nil {
		return Peak{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Peak{}, false
	}
	return s.Peaks[i], true
}

// Len returns the number of peaks.
func (s *Secondary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Peaks)
}

// Records normalizes the name variants of every peak.
func (s *Secondary) Records(n *names.Normalizer) []names.Record {
	if s == nil {
		return nil
	}
	var out []names.Record
	for _, p := range s.Peaks {
		out = append(out, n.FromFields(p.ID, p.NameFields()...)...)
	}
	return out
}
