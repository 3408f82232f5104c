package linkage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
)

func corpus(rows ...[]string) []names.Record {
	var out []names.Record
	for _, r := range rows {
		out = append(out, names.FromFields(r[0], r[1:]...)...)
	}
	return out
}

func ptr(s string) *string { return &s }

func TestResolveKhangScenario(t *testing.T) {
	logging.DisableLoggingForTest(t)

	anchors := corpus([]string{"X1", "Kang Peak", "Khang I"})
	survey := corpus([]string{"S1", "Khang 1", "Kang"})

	r, err := linkage.New(linkage.WithThreshold(0.9), linkage.WithPair("survey"))
	require.NoError(t, err)

	links, result, err := r.Resolve(context.Background(), anchors, survey)
	require.NoError(t, err)

	target, ok := links.Target("X1")
	require.True(t, ok)
	assert.Equal(t, "S1", target)
	assert.Equal(t, linkage.OriginMatch, links["X1"].Origin)
	assert.Equal(t, "Kang", links["X1"].TargetName, "primary name matches the survey variant")
	assert.Equal(t, 1.0, links["X1"].Similarity)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, "survey", result.Pair)
}

func TestResolveThresholdBoundary(t *testing.T) {
	logging.DisableLoggingForTest(t)

	// The only candidate scores exactly 0.9: equal names, titles I and 1.
	anchors := corpus([]string{"X1", "Khang I"})
	survey := corpus([]string{"S1", "Khang 1"})

	at, err := linkage.New(linkage.WithThreshold(0.9))
	require.NoError(t, err)
	links, _, err := at.Resolve(context.Background(), anchors, survey)
	require.NoError(t, err)
	assert.Contains(t, links, "X1")
	assert.Equal(t, 0.9, links["X1"].Similarity)

	above, err := linkage.New(linkage.WithThreshold(0.9001))
	require.NoError(t, err)
	links, result, err := above.Resolve(context.Background(), anchors, survey)
	require.NoError(t, err)
	assert.NotContains(t, links, "X1")
	assert.Equal(t, 1, result.BelowThreshold)
	require.Len(t, result.Decisions, 1)
	assert.False(t, result.Decisions[0].Accepted)
	require.NotNil(t, result.Decisions[0].Best)
}

func TestResolveOverridePrecedence(t *testing.T) {
	logging.DisableLoggingForTest(t)

	anchors := corpus(
		[]string{"RANI", "Himalchuli North East"},
		[]string{"AMAD", "Ama Dablam"},
		[]string{"EVER", "Everest"},
	)
	registry := corpus(
		[]string{"119", "Himalchuli East"},
		[]string{"7", "Ama Dablam"},
		[]string{"8", "Everest"},
	)

	r, err := linkage.New(linkage.WithOverrides(linkage.Overrides{
		"AMAD": ptr("119"),
		"EVER": nil,
		"LNKE": ptr("233"),
	}))
	require.NoError(t, err)

	links, result, err := r.Resolve(context.Background(), anchors, registry)
	require.NoError(t, err)

	// A perfect computed match never replaces an override.
	assert.Equal(t, linkage.Link{SourceID: "AMAD", TargetID: "119", TargetName: "Himalchuli East", Origin: linkage.OriginOverride}, links["AMAD"])

	// A null override is a known non-match.
	_, ok := links.Target("EVER")
	assert.False(t, ok)
	assert.Equal(t, linkage.OriginOverride, links["EVER"].Origin)

	// Overrides for ids outside the corpus are kept but not counted.
	assert.Equal(t, "233", links["LNKE"].TargetID)
	assert.Equal(t, 3, result.Anchors)
	assert.Equal(t, 2, result.Overridden)
	assert.Len(t, result.Decisions, 1)
	assert.Equal(t, result.Anchors,
		result.Overridden+result.Matched+result.Unmatched+result.BelowThreshold)
}

func TestResolveCounts(t *testing.T) {
	logging.DisableLoggingForTest(t)

	anchors := corpus(
		[]string{"AMAD", "Ama Dablam"},
		[]string{"PK41", "Peak 41"},
		[]string{"LHOT", "Lhotse"},
		[]string{"MAKA", "Makalu"},
	)
	targets := corpus(
		[]string{"1", "Ama Dablam"},
		[]string{"2", "Lhotse Shar"},
	)

	r, err := linkage.New(linkage.WithThreshold(0.95), linkage.WithWorkers(2))
	require.NoError(t, err)
	links, result, err := r.Resolve(context.Background(), anchors, targets)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Anchors)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.BelowThreshold)
	assert.Equal(t, 2, result.Unmatched)
	assert.Len(t, links, 1)

	ids := make([]string, 0, len(result.Decisions))
	for _, d := range result.Decisions {
		ids = append(ids, d.SourceID)
	}
	assert.Equal(t, []string{"AMAD", "PK41", "LHOT", "MAKA"}, ids)
}

func TestResolveEmpty(t *testing.T) {
	logging.DisableLoggingForTest(t)

	r, err := linkage.New()
	require.NoError(t, err)
	assert.Equal(t, 0.6, r.Threshold())

	links, result, err := r.Resolve(context.Background(), nil, corpus([]string{"1", "Everest"}))
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Zero(t, result.Anchors)
}

func TestResolveCanceled(t *testing.T) {
	logging.DisableLoggingForTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := linkage.New()
	require.NoError(t, err)
	_, _, err = r.Resolve(ctx, corpus([]string{"A", "Everest"}), corpus([]string{"1", "Everest"}))
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptionValidation(t *testing.T) {
	for _, opt := range []linkage.Option{
		linkage.WithThreshold(1.1),
		linkage.WithThreshold(-0.1),
		linkage.WithPrimaryOverride(2),
		linkage.WithWorkers(-1),
	} {
		_, err := linkage.New(opt)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestLinkMapReport(t *testing.T) {
	m := linkage.LinkMap{
		"KANG": {SourceID: "KANG", TargetID: "S1", TargetName: "Khang 1", Similarity: 0.9, Origin: linkage.OriginMatch},
		"EVER": {SourceID: "EVER", Origin: linkage.OriginOverride},
	}
	assert.Equal(t, [][]string{
		{"EVER", "", "", "", "override"},
		{"KANG", "S1", "Khang 1", "0.9000000", "match"},
	}, m.Report())
}

func TestTables(t *testing.T) {
	tables, err := linkage.DefaultTables()
	require.NoError(t, err)

	registry := tables.For("registry")
	require.Contains(t, registry, "RANI")
	assert.Equal(t, "119", *registry["RANI"])
	assert.Empty(t, tables.For("survey"))
	assert.Len(t, tables.Regions, 26)
	assert.Equal(t, "KHUMBU", tables.Regions["PK41"])

	parsed, err := linkage.ParseTables([]byte("links:\n  survey:\n    EVER: null\n"), "x.yaml")
	require.NoError(t, err)
	survey := parsed.For("survey")
	require.Contains(t, survey, "EVER")
	assert.Nil(t, survey["EVER"])
	assert.NotNil(t, parsed.Regions)

	_, err = linkage.ParseTables([]byte("links: ["), "bad.yaml")
	assert.Error(t, err)

	var nilTables *linkage.Tables
	assert.Empty(t, nilTables.For("survey"))
}
