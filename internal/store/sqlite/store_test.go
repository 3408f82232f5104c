package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/internal/store/sqlite"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/regions"
)

func open(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "out", "peakmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWritePeaks(t *testing.T) {
	ctx := context.Background()
	s := open(t)

	lon, lat, height, approx := 86.925, 27.5, 6093, false
	peaks := []catalog.Peak{
		{ID: "KANG", Name: "Kang Peak", AltNames: []string{"Khang I"}, Height: &height,
			Longitude: &lon, Latitude: &lat, Approximate: &approx, RegionID: "KHUMBU"},
		{ID: "PK41", Name: "Peak 41"},
	}
	require.NoError(t, s.WritePeaks(ctx, peaks))

	n, err := s.Count(ctx, "ref_peak")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	region, err := s.PeakRegion(ctx, "KANG")
	require.NoError(t, err)
	assert.Equal(t, "KHUMBU", region)

	region, err = s.PeakRegion(ctx, "PK41")
	require.NoError(t, err)
	assert.Empty(t, region)

	_, err = s.PeakRegion(ctx, "NONE")
	assert.True(t, errors.IsNotFound(err))

	// A second write replaces the table.
	require.NoError(t, s.WritePeaks(ctx, peaks[:1]))
	n, err = s.Count(ctx, "ref_peak")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteRegionsAndLinks(t *testing.T) {
	ctx := context.Background()
	s := open(t)

	r, err := regions.NewRegion("KHUMBU", orb.Ring{{86, 27}, {87, 27}, {87, 28}, {86, 28}})
	require.NoError(t, err)
	require.NoError(t, s.WriteRegions(ctx, []regions.Region{r}))

	n, err := s.Count(ctx, "ref_region")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	survey := linkage.LinkMap{
		"KANG": {SourceID: "KANG", TargetID: "S1", Similarity: 0.9, Origin: linkage.OriginMatch},
	}
	registry := linkage.LinkMap{
		"RANI": {SourceID: "RANI", TargetID: "119", Origin: linkage.OriginOverride},
		"NULL": {SourceID: "NULL", Origin: linkage.OriginOverride},
	}
	require.NoError(t, s.WriteLinks(ctx, "survey", survey))
	require.NoError(t, s.WriteLinks(ctx, "registry", registry))
	require.NoError(t, s.WriteLinks(ctx, "survey", survey))

	n, err = s.Count(ctx, "ref_link")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpenErrors(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ")
	assert.True(t, errors.IsValidationError(err))

	s := open(t)
	_, err = s.Count(context.Background(), "sqlite_master")
	assert.True(t, errors.IsValidationError(err))

	var nilStore *sqlite.Store
	assert.NoError(t, nilStore.Close())
}
