package regions

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/logging"
)

// ReadGeoJSON decodes a feature collection of single-ring polygons. The
// feature id is the region id; a "parent" property is kept as a hint.
// An invalid boundary fails the whole read.
func ReadGeoJSON(ctx context.Context, r io.Reader, name string) ([]Region, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.NewParseError("geojson", name, "cannot decode feature collection", err)
	}

	out := make([]Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		id := featureID(f)
		if id == "" {
			return nil, &errors.ValidationError{
				Field:   "id",
				Value:   i,
				Message: fmt.Sprintf("feature %d in %s has no id", i, name),
			}
		}

		ring, err := singleRing(id, f.Geometry)
		if err != nil {
			return nil, err
		}

		region, err := NewRegion(id, ring)
		if err != nil {
			return nil, err
		}
		region.Hint = f.Properties.MustString("parent", "")
		out = append(out, region)
	}

	logging.FromContext(ctx).Debug().
		Str("file", name).
		Int("regions", len(out)).
		Msg("Loaded region boundaries")

	return out, nil
}

// LoadFile reads regions from a GeoJSON file.
func LoadFile(ctx context.Context, path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadGeoJSON(ctx, f, filepath.Base(path))
}

func featureID(f *geojson.Feature) string {
	switch v := f.ID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if id, ok := f.Properties["id"].(string); ok {
		return id
	}
	return ""
}

func singleRing(id string, g orb.Geometry) (orb.Ring, error) {
	poly, ok := g.(orb.Polygon)
	if !ok {
		kind := "no geometry"
		if g != nil {
			kind = g.GeoJSONType()
		}
		return nil, errors.NewGeometryError(id, fmt.Sprintf("expected Polygon, got %s", kind))
	}
	if len(poly) != 1 {
		return nil, errors.NewGeometryError(id, fmt.Sprintf("polygon has %d rings", len(poly)))
	}
	return poly[0], nil
}
