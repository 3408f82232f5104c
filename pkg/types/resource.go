package types

// ResourceType identifies the kind of record a provenance entry refers to.
type ResourceType string

const (
	// ResourceTypePeak represents a catalog peak.
	ResourceTypePeak ResourceType = "peak"

	// ResourceTypeRegion represents a mountain range region.
	ResourceTypeRegion ResourceType = "region"
)

// String returns the string representation of a resource type.
func (rt ResourceType) String() string {
	return string(rt)
}
