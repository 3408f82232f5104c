package save_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/peakmap/pkg/save"
)

func TestDefaults(t *testing.T) {
	opts := save.Defaults()
	assert.Equal(t, ".", opts.Dir())
	assert.True(t, opts.Wants(save.ArtifactCatalog))
	assert.True(t, opts.Wants(save.ArtifactLinks))
	assert.False(t, opts.Wants(save.ArtifactProvenance))
	assert.Empty(t, opts.SQLitePath())
	assert.Empty(t, opts.MetricsPath())
}

func TestApply(t *testing.T) {
	artifacts := []save.Artifact{save.ArtifactCatalog}
	opts := save.Defaults().Apply(
		save.WithDir("out"),
		save.WithArtifacts(artifacts...),
		save.WithSQLite("out/peakmap.db"),
		save.WithMetricsFile("out/peakmap.prom"),
	)
	artifacts[0] = save.ArtifactGeoJSON

	assert.Equal(t, "out", opts.Dir())
	assert.True(t, opts.Wants(save.ArtifactCatalog))
	assert.False(t, opts.Wants(save.ArtifactGeoJSON))
	assert.Equal(t, "out/peakmap.db", opts.SQLitePath())
	assert.Equal(t, "out/peakmap.prom", opts.MetricsPath())
}

func TestArtifacts(t *testing.T) {
	for _, a := range save.Artifacts() {
		assert.True(t, a.IsValid(), a.String())
	}
	assert.False(t, save.Artifact("pdf").IsValid())
	assert.Equal(t, "ref_link_survey.txt", save.LinksFile("survey"))
}
