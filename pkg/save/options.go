// Package save configures which artifacts of a build are written and
// where.
package save

import "slices"

// Artifact names one output of a build.
type Artifact string

// Artifacts.
const (
	// ArtifactCatalog is the peak catalog table.
	ArtifactCatalog Artifact = "catalog"
	// ArtifactGeoJSON is the peak point feature collection.
	ArtifactGeoJSON Artifact = "geojson"
	// ArtifactLinks is one link report table per source pair.
	ArtifactLinks Artifact = "links"
	// ArtifactRegions is the region table.
	ArtifactRegions Artifact = "regions"
	// ArtifactProvenance is the coordinate provenance YAML file.
	ArtifactProvenance Artifact = "provenance"
)

// Artifacts returns every artifact.
func Artifacts() []Artifact {
	return []Artifact{
		ArtifactCatalog,
		ArtifactGeoJSON,
		ArtifactLinks,
		ArtifactRegions,
		ArtifactProvenance,
	}
}

// IsValid checks if the artifact is known.
func (a Artifact) IsValid() bool {
	return slices.Contains(Artifacts(), a)
}

// String returns the string representation of the artifact.
func (a Artifact) String() string {
	return string(a)
}

// File names inside the output directory.
const (
	CatalogFile    = "ref_peak.txt"
	GeoJSONFile    = "ref_peak.geojson"
	RegionsFile    = "ref_region.txt"
	ProvenanceFile = "provenance.yaml"
)

// LinksFile returns the link report file name of a source pair.
func LinksFile(pair string) string {
	return "ref_link_" + pair + ".txt"
}

// Options is the configuration for save.
type Options struct {
	dir         string
	artifacts   []Artifact
	sqlitePath  string
	metricsPath string
}

// Dir returns the output directory.
func (s *Options) Dir() string {
	return s.dir
}

// Wants reports whether an artifact is written.
func (s *Options) Wants(a Artifact) bool {
	return slices.Contains(s.artifacts, a)
}

// SQLitePath returns the SQLite export path, or "" when disabled.
func (s *Options) SQLitePath() string {
	return s.sqlitePath
}

// MetricsPath returns the metrics textfile path, or "" when disabled.
func (s *Options) MetricsPath() string {
	return s.metricsPath
}

// Defaults returns the default save options: every artifact except
// provenance, written to the working directory.
func Defaults() *Options {
	return &Options{
		dir: ".",
		artifacts: []Artifact{
			ArtifactCatalog,
			ArtifactGeoJSON,
			ArtifactLinks,
			ArtifactRegions,
		},
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithDir sets the output directory.
func WithDir(dir string) Option {
	return func(s *Options) {
		s.dir = dir
	}
}

// WithArtifacts replaces the set of artifacts written.
func WithArtifacts(artifacts ...Artifact) Option {
	return func(s *Options) {
		s.artifacts = slices.Clone(artifacts)
	}
}

// WithSQLite also exports the results to a SQLite database at path.
func WithSQLite(path string) Option {
	return func(s *Options) {
		s.sqlitePath = path
	}
}

// WithMetricsFile also writes run metrics to a Prometheus textfile at path.
func WithMetricsFile(path string) Option {
	return func(s *Options) {
		s.metricsPath = path
	}
}
