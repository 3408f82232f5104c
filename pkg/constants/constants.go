// Package constants provides shared constants used throughout peakmap.
// This includes linkage thresholds, similarity weights, file permissions,
// and the numeric formats used when writing coordinates.
package constants

import "time"

// Linkage thresholds. A computed match is accepted when its similarity is at
// least the threshold of the pair being resolved.
const (
	// DefaultThreshold applies when no pair-specific threshold is configured.
	DefaultThreshold = 0.6

	// RegistryThreshold applies to anchor-to-registry linkage.
	RegistryThreshold = 0.7

	// SurveyThreshold applies to anchor-to-survey linkage.
	SurveyThreshold = 0.9
)

// Similarity tuning.
const (
	// CosineFloor drops candidate pairs whose TF-IDF cosine is below it.
	CosineFloor = 0.5

	// PrimaryOverride is the similarity a primary-name candidate must exceed
	// to win over a better alternate-name candidate.
	PrimaryOverride = 0.85

	// TitleWeightPerToken is the title weight contributed by each source title token.
	TitleWeightPerToken = 0.1

	// MaxTitleTokens caps the number of source title tokens that add weight.
	MaxTitleTokens = 2

	// MinNGram and MaxNGram bound the character n-grams used for TF-IDF.
	MinNGram = 2
	MaxNGram = 3
)

// Region containment.
const (
	// ShadowRatio is the share of a child's area that must lie inside a
	// larger region for that region to be shadowed.
	ShadowRatio = 0.99
)

// Coordinate formatting.
const (
	// DecimalPlaces is the precision of decimal degrees in outputs.
	DecimalPlaces = 7

	// DMSScale is the fixed-point scale used when converting to degrees, minutes and seconds.
	DMSScale = 10_000_000
)

// Timeouts.
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limits.
const (
	// MaxWorkers caps the number of goroutines used for candidate scoring.
	MaxWorkers = 16

	// MaxNameLength is the longest raw name accepted from a source row.
	MaxNameLength = 256
)
