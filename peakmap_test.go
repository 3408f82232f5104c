package peakmap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/internal/fixtures"
	"github.com/agentstation/peakmap/internal/observability"
	"github.com/agentstation/peakmap/internal/store/sqlite"
	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/provenance"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/save"
	"github.com/agentstation/peakmap/pkg/types"
)

func peakByID(t *testing.T, cat *catalog.Catalog, id string) catalog.Peak {
	t.Helper()
	for _, p := range cat.Peaks {
		if p.ID == id {
			return p
		}
	}
	require.Failf(t, "peak not in catalog", "id %s", id)
	return catalog.Peak{}
}

func TestBuild(t *testing.T) {
	fx := fixtures.Write(t)
	metrics := observability.NewMetrics("peakmap")

	client, err := peakmap.New(
		peakmap.WithSources(fx.Paths),
		peakmap.WithRegionsFile(fx.Regions),
		peakmap.WithProvenance(true),
		peakmap.WithMetrics(metrics),
		peakmap.WithWorkers(2),
	)
	require.NoError(t, err)

	linked := map[types.SourceID]*linkage.Result{}
	var regionSet *regions.Set
	built := 0
	client.OnLinked(func(target types.SourceID, _ linkage.LinkMap, r *linkage.Result) {
		linked[target] = r
	})
	client.OnRegions(func(set *regions.Set) { regionSet = set })
	client.OnBuilt(func(*catalog.Catalog) { built++ })

	res, err := client.Build(context.Background())
	require.NoError(t, err)

	t.Run("hooks", func(t *testing.T) {
		assert.Len(t, linked, 2)
		assert.Equal(t, 1, built)
		require.NotNil(t, regionSet)
		assert.Equal(t, 3, regionSet.Len())
	})

	t.Run("survey links", func(t *testing.T) {
		links := res.Links[types.SurveyID]
		target, ok := links.Target("KANG")
		require.True(t, ok)
		assert.Equal(t, "S1", target)
		assert.Equal(t, linkage.OriginMatch, links["KANG"].Origin)

		target, ok = links.Target("AMAD")
		require.True(t, ok)
		assert.Equal(t, "S2", target)

		_, ok = links.Target("RANI")
		assert.False(t, ok)
	})

	t.Run("registry links", func(t *testing.T) {
		links := res.Links[types.RegistryID]
		assert.Equal(t, linkage.OriginOverride, links["RANI"].Origin)
		target, _ := links.Target("RANI")
		assert.Equal(t, "119", target)

		target, ok := links.Target("AMAD")
		require.True(t, ok)
		assert.Equal(t, "120", target)
		assert.InDelta(t, 1.0, links["AMAD"].Similarity, 1e-9)

		_, ok = links.Target("KANG")
		assert.False(t, ok)

		// Only RANI of the embedded registry overrides is in the anchor table.
		result := res.Linkage[types.RegistryID]
		assert.Equal(t, 1, result.Overridden)
		assert.Equal(t, 3, result.Anchors)
	})

	t.Run("regions", func(t *testing.T) {
		outer, ok := res.Regions.Get("MAHALANGUR")
		require.True(t, ok)
		assert.True(t, outer.Shadowed)

		inner, ok := res.Regions.Get("KHUMBU")
		require.True(t, ok)
		assert.False(t, inner.Shadowed)
		assert.Equal(t, "MAHALANGUR", inner.ParentID)
	})

	t.Run("catalog", func(t *testing.T) {
		require.Len(t, res.Catalog.Peaks, 3)

		kang := peakByID(t, res.Catalog, "KANG")
		assert.Equal(t, "Kang Peak", kang.Name)
		assert.Equal(t, []string{"Kang", "Khang 1", "Khang I"}, kang.AltNames)
		require.NotNil(t, kang.Approximate)
		assert.False(t, *kang.Approximate)
		assert.Equal(t, "KHUMBU", kang.RegionID)
		require.NotNil(t, kang.Height)
		assert.Equal(t, 6093, *kang.Height)

		rani := peakByID(t, res.Catalog, "RANI")
		require.NotNil(t, rani.Approximate)
		assert.True(t, *rani.Approximate)
		assert.Equal(t, "ROLWALING", rani.RegionID)

		assert.Equal(t, 3, res.Catalog.Stats.WithCoordinates)
		assert.Equal(t, 1, res.Catalog.Stats.Approximate)
	})

	t.Run("metrics", func(t *testing.T) {
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.Regions.WithLabelValues("shadowed")), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(metrics.Regions.WithLabelValues("active")), 0)
		assert.InDelta(t, 3, testutil.ToFloat64(metrics.Peaks.WithLabelValues("total")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(metrics.LastRunSuccess), 0)
		assert.InDelta(t, float64(linked[types.SurveyID].Matched),
			testutil.ToFloat64(metrics.Links.WithLabelValues("survey", "matched")), 0)
	})

	t.Run("provenance", func(t *testing.T) {
		require.NotNil(t, res.Provenance)
		assert.NotEmpty(t, res.Provenance)
	})
}

func TestSave(t *testing.T) {
	fx := fixtures.Write(t)
	metrics := observability.NewMetrics("peakmap")
	client, err := peakmap.New(
		peakmap.WithSources(fx.Paths),
		peakmap.WithRegionsFile(fx.Regions),
		peakmap.WithProvenance(true),
		peakmap.WithMetrics(metrics),
	)
	require.NoError(t, err)

	ctx := context.Background()
	res, err := client.Build(ctx)
	require.NoError(t, err)

	out := t.TempDir()
	dbPath := filepath.Join(out, "peakmap.db")
	promPath := filepath.Join(out, "peakmap.prom")
	require.NoError(t, client.Save(ctx, res,
		save.WithDir(out),
		save.WithArtifacts(save.Artifacts()...),
		save.WithSQLite(dbPath),
		save.WithMetricsFile(promPath),
	))

	for _, name := range []string{
		save.CatalogFile,
		save.GeoJSONFile,
		save.RegionsFile,
		save.ProvenanceFile,
		save.LinksFile("survey"),
		save.LinksFile("registry"),
	} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "peakmap_catalog_peaks")

	pf, err := provenance.Load(filepath.Join(out, save.ProvenanceFile))
	require.NoError(t, err)
	assert.NotNil(t, pf)

	store, err := sqlite.Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	n, err := store.Count(ctx, "ref_peak")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	region, err := store.PeakRegion(ctx, "RANI")
	require.NoError(t, err)
	assert.Equal(t, "ROLWALING", region)
}

func TestSaveWithoutResult(t *testing.T) {
	client, err := peakmap.New()
	require.NoError(t, err)

	err = client.Save(context.Background(), nil, save.WithDir(t.TempDir()))
	assert.True(t, errors.IsValidationError(err))
}

func TestLink(t *testing.T) {
	fx := fixtures.Write(t)
	client, err := peakmap.New(peakmap.WithSources(fx.Paths))
	require.NoError(t, err)

	links, result, err := client.Link(context.Background(), types.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, "survey", result.Pair)
	assert.InDelta(t, 0.9, result.Threshold, 0)
	assert.Len(t, links, 2)

	_, _, err = client.Link(context.Background(), types.AnchorID)
	assert.True(t, errors.IsValidationError(err))
}

func TestBuildMissingSource(t *testing.T) {
	fx := fixtures.Write(t)
	fx.Paths.Registry = filepath.Join(t.TempDir(), "missing.txt")
	metrics := observability.NewMetrics("peakmap")

	client, err := peakmap.New(peakmap.WithSources(fx.Paths), peakmap.WithMetrics(metrics))
	require.NoError(t, err)

	_, err = client.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsMissingSource(err))
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.LastRunSuccess), 0)
}

func TestNewOptions(t *testing.T) {
	t.Run("threshold out of range", func(t *testing.T) {
		_, err := peakmap.New(peakmap.WithThreshold(types.SurveyID, 1.5))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("missing rules file", func(t *testing.T) {
		_, err := peakmap.New(peakmap.WithRulesFile(filepath.Join(t.TempDir(), "rules.yaml")))
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("embedded tables", func(t *testing.T) {
		client, err := peakmap.New()
		require.NoError(t, err)
		assert.Equal(t, "KHUMBU", client.Overrides().Regions["PK41"])
		name, title := client.Normalizer().Normalize("Kang Peak")
		assert.Equal(t, "KANG", name)
		assert.Empty(t, title)
	})
}
