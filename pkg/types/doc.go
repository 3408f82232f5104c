// Package types provides shared type definitions used across the peakmap packages.
//
// It holds identifiers like SourceID and ResourceType that are referenced by
// the linkage, provenance and catalog packages, so none of them has to import
// another just to name a source.
//
//nolint:revive // Package name 'types' is appropriate for common type definitions
package types
