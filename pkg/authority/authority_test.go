package authority_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/peakmap/pkg/authority"
	"github.com/agentstation/peakmap/pkg/types"
)

func TestRanked(t *testing.T) {
	a := authority.New()

	assert.Equal(t, []types.SourceID{types.SurveyID, types.RegistryID},
		a.Ranked("Coordinates", types.ResourceTypePeak))
	assert.Equal(t, []types.SourceID{types.AnchorID, types.SurveyID, types.RegistryID},
		a.Ranked("AltNames", types.ResourceTypePeak))
	assert.Empty(t, a.Ranked("Coordinates", types.ResourceType("glacier")))
	assert.Empty(t, a.Ranked("Unknown", types.ResourceTypePeak))
}

func TestPriority(t *testing.T) {
	a := authority.New()

	assert.Equal(t, 100, a.Priority("Coordinates", types.ResourceTypePeak, types.SurveyID))
	assert.Equal(t, 90, a.Priority("Coordinates", types.ResourceTypePeak, types.RegistryID))
	assert.Equal(t, 0, a.Priority("Coordinates", types.ResourceTypePeak, types.AnchorID))
}

func TestCustomTable(t *testing.T) {
	a := authority.Table{
		types.ResourceTypePeak: {
			{Path: "Coordinates", Source: types.RegistryID, Priority: 100},
			{Path: "Coord*", Source: types.SurveyID, Priority: 10},
			{Path: "Coordinates", Source: types.SurveyID, Priority: 5},
		},
	}

	assert.Equal(t, []types.SourceID{types.RegistryID, types.SurveyID},
		a.Ranked("Coordinates", types.ResourceTypePeak))
	assert.Equal(t, 10, a.Priority("Coordinates", types.ResourceTypePeak, types.SurveyID))
	assert.Empty(t, a.Ranked("Geometry", types.ResourceTypeRegion))
}

func TestFieldMatches(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"Coordinates", "Coordinates", true},
		{"Coordinates.lat", "Coordinates*", true},
		{"Notes", "N?tes", true},
		{"Height", "Name", false},
		{"x", "[", false},
	}
	for _, tt := range tests {
		f := authority.Field{Path: tt.pattern}
		assert.Equal(t, tt.want, f.Matches(tt.path), "%s ~ %s", tt.path, tt.pattern)
	}
}
