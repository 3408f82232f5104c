package catalog

import (
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
)

// FeatureCollection returns one point feature per peak with coordinates.
// Properties are name, alt_names, height and region, each only when set.
func FeatureCollection(peaks []Peak) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range peaks {
		p := &peaks[i]
		if !p.HasCoordinates() {
			continue
		}

		f := geojson.NewFeature(orb.Point{*p.Longitude, *p.Latitude})
		f.ID = p.ID
		if p.Name != "" {
			f.Properties["name"] = p.Name
		}
		if len(p.AltNames) > 0 {
			f.Properties["alt_names"] = strings.Join(p.AltNames, ",")
		}
		if p.Height != nil {
			f.Properties["height"] = *p.Height
		}
		if p.RegionID != "" {
			f.Properties["region"] = p.RegionID
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the peak feature collection to path.
func WriteGeoJSON(path string, peaks []Peak) error {
	data, err := FeatureCollection(peaks).MarshalJSON()
	if err != nil {
		return errors.WrapIO("encode", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}
