//nolint:revive // Package types provides common type definitions
package types

import "slices"

// SourceID identifies one of the peak tables fed into the catalog build.
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// Source identifiers.
const (
	// AnchorID identifies the expedition database whose peak ids anchor the catalog.
	AnchorID SourceID = "anchor"

	// SurveyID identifies the crowd-sourced map survey table.
	SurveyID SourceID = "survey"

	// RegistryID identifies the government peak registry table.
	RegistryID SourceID = "registry"
)

// SourceIDs returns all source identifiers in load order.
func SourceIDs() []SourceID {
	return []SourceID{
		AnchorID,
		SurveyID,
		RegistryID,
	}
}

// TargetIDs returns the sources that anchor peaks are linked against.
func TargetIDs() []SourceID {
	return []SourceID{SurveyID, RegistryID}
}

// IsValid returns true if the SourceID is one of the defined constants.
func (id SourceID) IsValid() bool {
	return slices.Contains(SourceIDs(), id)
}
