// Package fixtures writes small peak tables and region boundaries for
// tests. The data links KANG and AMAD to the survey, RANI and AMAD to the
// registry, and places every anchor peak in a region.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/pkg/sources"
)

// Anchor is the expedition archive table.
const Anchor = `peakid|pkname|pkname2|heightm|location
AMAD|Ama Dablam||6814|Khumbu Himal
KANG|Kang Peak|Khang I|6093|
RANI|Rani Peak||5693|Rolwaling
`

// Survey is the map survey table.
const Survey = `peak_id|peak_name|alt_names|longitude|latitude|dms_longitude|dms_latitude
S1|Khang 1|Kang|86.5|27.5||
S2|Ama Dablam||86.86|27.86||
`

// Registry is the government registry table.
const Registry = `peak_number|peak_name|alt_names|longitude|latitude|dms_longitude|dms_latitude
119|Rani||85.8|27.9||
120|Amadablam||86.86|27.86||
`

// Regions holds three regions. MAHALANGUR covers KHUMBU and ROLWALING and
// is shadowed.
const Regions = `{"type":"FeatureCollection","features":[
{"type":"Feature","id":"KHUMBU","properties":{"parent":"MAHALANGUR"},"geometry":{"type":"Polygon","coordinates":[[[86,27],[87,27],[87,28],[86,28],[86,27]]]}},
{"type":"Feature","id":"MAHALANGUR","properties":{},"geometry":{"type":"Polygon","coordinates":[[[85,26],[88,26],[88,29],[85,29],[85,26]]]}},
{"type":"Feature","id":"ROLWALING","properties":{},"geometry":{"type":"Polygon","coordinates":[[[85.5,27.5],[85.99,27.5],[85.99,28],[85.5,28],[85.5,27.5]]]}}
]}`

// Files are the paths of the written fixtures.
type Files struct {
	Dir     string
	Paths   sources.Paths
	Regions string
}

// Write writes every fixture to a temporary directory.
func Write(t testing.TB) Files {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return Files{
		Dir: dir,
		Paths: sources.Paths{
			Anchor:   write("hdb_peak.txt", Anchor),
			Survey:   write("osm_peak.txt", Survey),
			Registry: write("mot_peak.txt", Registry),
		},
		Regions: write("himal.geojson", Regions),
	}
}
