package catalog

import (
	"strconv"
	"strings"

	"github.com/agentstation/peakmap/internal/utils/ptr"
	"github.com/agentstation/peakmap/pkg/dsv"
)

// Peak is one catalog row. Its ID is the anchor peak id.
type Peak struct {
	ID       string   `json:"peak_id" yaml:"peak_id"`
	Name     string   `json:"peak_name" yaml:"peak_name"`
	AltNames []string `json:"alt_names,omitempty" yaml:"alt_names,omitempty"`
	Height   *int     `json:"height,omitempty" yaml:"height,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`

	// Approximate is nil when the peak has no coordinates.
	Approximate *bool    `json:"approximate_coordinates,omitempty" yaml:"approximate_coordinates,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`

	DMSLongitude    string `json:"dms_longitude,omitempty" yaml:"dms_longitude,omitempty"`
	DMSLatitude     string `json:"dms_latitude,omitempty" yaml:"dms_latitude,omitempty"`
	CoordinateNotes string `json:"coordinate_notes,omitempty" yaml:"coordinate_notes,omitempty"`
	RegionID        string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
}

// HasCoordinates reports whether the peak has a position.
func (p *Peak) HasCoordinates() bool {
	return p.Longitude != nil && p.Latitude != nil
}

// Header is the column list of the catalog table.
var Header = []string{
	"peak_id",
	"peak_name",
	"alt_names",
	"height",
	"location",
	"approximate_coordinates",
	"longitude",
	"latitude",
	"dms_longitude",
	"dms_latitude",
	"coordinate_notes",
	"region_id",
}

// Row renders the peak as catalog table fields. Null values are empty.
func (p *Peak) Row() []string {
	var height, lon, lat string
	if p.Height != nil {
		height = strconv.Itoa(*p.Height)
	}
	if p.HasCoordinates() {
		lon, lat = Decimal(*p.Longitude), Decimal(*p.Latitude)
	}
	return []string{
		p.ID,
		p.Name,
		strings.Join(p.AltNames, ","),
		height,
		p.Location,
		ptr.Flag(p.Approximate),
		lon,
		lat,
		p.DMSLongitude,
		p.DMSLatitude,
		p.CoordinateNotes,
		p.RegionID,
	}
}

// Rows renders every peak in catalog order.
func Rows(peaks []Peak) [][]string {
	rows := make([][]string, len(peaks))
	for i := range peaks {
		rows[i] = peaks[i].Row()
	}
	return rows
}

// WriteFile writes the catalog table to path.
func WriteFile(path string, peaks []Peak) error {
	return dsv.WriteFile(path, Header, Rows(peaks))
}
