package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/dsv"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
	"github.com/agentstation/peakmap/pkg/provenance"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/sources"
	"github.com/agentstation/peakmap/pkg/types"
)

func TestDMS(t *testing.T) {
	tests := []struct {
		value float64
		axis  catalog.Axis
		want  string
	}{
		{86.925, catalog.Longitude, "86° 55′ 30.00000″ E"},
		{-27.5, catalog.Latitude, "27° 30′ 00.00000″ S"},
		{27.98833, catalog.Latitude, "27° 59′ 17.98800″ N"},
		{-0.5, catalog.Longitude, "0° 30′ 00.00000″ W"},
		{0, catalog.Latitude, "0° 00′ 00.00000″ N"},
		{0, catalog.Longitude, "0° 00′ 00.00000″ E"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.DMS(tt.value, tt.axis))
		})
	}

	assert.Equal(t, "86.9250000", catalog.Decimal(86.925))
}

func rect(x0, y0, x1, y1 float64) orb.Ring {
	return orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func regionSet(t *testing.T) *regions.Set {
	t.Helper()
	khumbu, err := regions.NewRegion("KHUMBU", rect(86, -28, 87, -27))
	require.NoError(t, err)
	set, err := regions.New(context.Background(), []regions.Region{khumbu})
	require.NoError(t, err)
	return set
}

func fixture() catalog.Input {
	anchors := sources.Anchors{
		{ID: "X1", Name: "Kang Peak", AltName: "Khang I", Height: "6093", Location: "Khumbu"},
		{ID: "AMAD", Name: "Ama Dablam", Height: "6814.0"},
		{ID: "PK41", Name: "Peak 41", Height: "unknown"},
	}
	survey := sources.NewSecondary(types.SurveyID, []sources.Peak{
		{Source: types.SurveyID, ID: "S1", Name: "Khang 1", AltNames: "Kang, Kang Peak",
			Coordinates: &sources.Coordinates{Longitude: 86.925, Latitude: -27.5}},
	})
	registry := sources.NewSecondary(types.RegistryID, []sources.Peak{
		{Source: types.RegistryID, ID: "119", Name: "Khang I",
			Coordinates: &sources.Coordinates{Longitude: 86.9, Latitude: 27.9, DMSLongitude: "86 54 E", DMSLatitude: "27 54 N"}},
		{Source: types.RegistryID, ID: "120", Name: "Ama Dablam",
			Coordinates: &sources.Coordinates{Longitude: 86.8612, Latitude: -27.8617}},
	})

	return catalog.Input{
		Anchors: anchors,
		Secondary: map[types.SourceID]*sources.Secondary{
			types.SurveyID:   survey,
			types.RegistryID: registry,
		},
		Links: map[types.SourceID]linkage.LinkMap{
			types.SurveyID: {
				"X1": {SourceID: "X1", TargetID: "S1", Similarity: 0.9, Origin: linkage.OriginMatch},
			},
			types.RegistryID: {
				"X1":   {SourceID: "X1", TargetID: "119", Origin: linkage.OriginOverride},
				"AMAD": {SourceID: "AMAD", TargetID: "120", Similarity: 1, Origin: linkage.OriginMatch},
				"PK41": {SourceID: "PK41", Origin: linkage.OriginOverride},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	logging.DisableLoggingForTest(t)

	tracker := provenance.NewTracker(true)
	b := catalog.New(
		catalog.WithRegions(regionSet(t)),
		catalog.WithRegionOverrides(map[string]string{"PK41": "HINKU"}),
		catalog.WithTracker(tracker),
	)

	cat, err := b.Build(context.Background(), fixture())
	require.NoError(t, err)
	require.Len(t, cat.Peaks, 3)

	t.Run("anchor order", func(t *testing.T) {
		ids := []string{cat.Peaks[0].ID, cat.Peaks[1].ID, cat.Peaks[2].ID}
		assert.Equal(t, []string{"X1", "AMAD", "PK41"}, ids)
	})

	t.Run("alt names deduplicated without primary", func(t *testing.T) {
		assert.Equal(t, []string{"Kang", "Khang 1", "Khang I"}, cat.Peaks[0].AltNames)
		assert.Nil(t, cat.Peaks[1].AltNames)
	})

	t.Run("survey coordinates win", func(t *testing.T) {
		p := cat.Peaks[0]
		require.True(t, p.HasCoordinates())
		assert.InDelta(t, 86.925, *p.Longitude, 1e-12)
		require.NotNil(t, p.Approximate)
		assert.False(t, *p.Approximate)
		assert.Equal(t, "86° 55′ 30.00000″ E", p.DMSLongitude)
		assert.Equal(t, "27° 30′ 00.00000″ S", p.DMSLatitude)
		assert.Equal(t,
			"OSM: (27° 30′ 00.00000″ S, 86° 55′ 30.00000″ E)\nMoTCA: (27 54 N, 86 54 E)",
			p.CoordinateNotes)
		assert.Equal(t, "KHUMBU", p.RegionID)
	})

	t.Run("registry fallback is approximate", func(t *testing.T) {
		p := cat.Peaks[1]
		require.True(t, p.HasCoordinates())
		assert.True(t, *p.Approximate)
		assert.Equal(t, "MoTCA: (27° 51′ 42.12000″ S, 86° 51′ 40.32000″ E)", p.CoordinateNotes)
		assert.Equal(t, "KHUMBU", p.RegionID)
		require.NotNil(t, p.Height)
		assert.Equal(t, 6814, *p.Height)
	})

	t.Run("override region without coordinates", func(t *testing.T) {
		p := cat.Peaks[2]
		assert.False(t, p.HasCoordinates())
		assert.Nil(t, p.Approximate)
		assert.Nil(t, p.Height)
		assert.Equal(t, "HINKU", p.RegionID)
		assert.Empty(t, p.CoordinateNotes)
	})

	t.Run("stats", func(t *testing.T) {
		assert.Equal(t, catalog.Stats{
			Peaks:           3,
			WithCoordinates: 2,
			Approximate:     1,
			WithRegion:      3,
			RegionOverrides: 1,
		}, cat.Stats)
	})

	t.Run("provenance", func(t *testing.T) {
		history := tracker.Map().Field(types.ResourceTypePeak, "X1", catalog.FieldCoordinates)
		require.Len(t, history, 2)
		assert.Equal(t, types.SurveyID, history[0].Source)
		assert.Equal(t, "selected", history[0].Reason)
		assert.Equal(t, 100, history[0].Authority)
		assert.InDelta(t, 0.9, history[0].Similarity, 1e-12)
		assert.Equal(t, types.RegistryID, history[1].Source)
		assert.Equal(t, "cited", history[1].Reason)
	})
}

func TestBuildCanceled(t *testing.T) {
	logging.DisableLoggingForTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := catalog.New().Build(ctx, fixture())
	require.Error(t, err)
}

func TestBuildKangScenario(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()

	anchors := sources.Anchors{{ID: "X1", Name: "Kang Peak", AltName: "Khang I"}}
	survey := sources.NewSecondary(types.SurveyID, []sources.Peak{
		{Source: types.SurveyID, ID: "S1", Name: "Khang 1", AltNames: "Kang",
			Coordinates: &sources.Coordinates{Longitude: 86.5, Latitude: -27.5}},
	})

	r, err := linkage.New(linkage.WithThreshold(0.9), linkage.WithPair("survey"))
	require.NoError(t, err)
	links, _, err := r.Resolve(ctx, anchors.Records(names.Default()), survey.Records(names.Default()))
	require.NoError(t, err)

	cat, err := catalog.New(catalog.WithRegions(regionSet(t))).Build(ctx, catalog.Input{
		Anchors:   anchors,
		Secondary: map[types.SourceID]*sources.Secondary{types.SurveyID: survey},
		Links:     map[types.SourceID]linkage.LinkMap{types.SurveyID: links},
	})
	require.NoError(t, err)
	require.Len(t, cat.Peaks, 1)

	p := cat.Peaks[0]
	assert.Equal(t, []string{"Kang", "Khang 1", "Khang I"}, p.AltNames)
	assert.Equal(t, "KHUMBU", p.RegionID)
	assert.Equal(t, "OSM: (27° 30′ 00.00000″ S, 86° 30′ 00.00000″ E)", p.CoordinateNotes)
}

func TestRowsAndFiles(t *testing.T) {
	logging.DisableLoggingForTest(t)

	cat, err := catalog.New(catalog.WithRegions(regionSet(t))).Build(context.Background(), fixture())
	require.NoError(t, err)

	rows := catalog.Rows(cat.Peaks)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], len(catalog.Header))
	assert.Equal(t, []string{"PK41", "Peak 41", "", "", "", "", "", "", "", "", "", ""}, rows[2])
	assert.Equal(t, "6093", rows[0][3])
	assert.Equal(t, "N", rows[0][5])
	assert.Equal(t, "86.9250000", rows[0][6])
	assert.Equal(t, "-27.5000000", rows[0][7])

	dir := t.TempDir()
	tablePath := filepath.Join(dir, "peak.txt")
	require.NoError(t, catalog.WriteFile(tablePath, cat.Peaks))

	table, err := dsv.ReadFile(tablePath)
	require.NoError(t, err)
	assert.Equal(t, catalog.Header, table.Header)
	require.Len(t, table.Rows, 3)
	notes, ok := table.Rows[0].Get("coordinate_notes")
	require.True(t, ok)
	assert.Contains(t, notes, "\nMoTCA: ")

	geoPath := filepath.Join(dir, "peak.geojson")
	require.NoError(t, catalog.WriteGeoJSON(geoPath, cat.Peaks))

	data, err := os.ReadFile(geoPath)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2, "peaks without coordinates have no feature")

	f := fc.Features[0]
	assert.Equal(t, "X1", f.ID)
	assert.Equal(t, orb.Point{86.925, -27.5}, f.Geometry)
	assert.Equal(t, "Kang Peak", f.Properties["name"])
	assert.Equal(t, "Kang,Khang 1,Khang I", f.Properties["alt_names"])
	assert.InDelta(t, 6093, f.Properties["height"], 0)
	assert.Equal(t, "KHUMBU", f.Properties["region"])

	_, hasAlt := fc.Features[1].Properties["alt_names"]
	assert.False(t, hasAlt)
}
