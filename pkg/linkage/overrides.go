package linkage

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/peakmap/internal/embedded"
	"github.com/agentstation/peakmap/pkg/errors"
)

// Overrides maps anchor ids to a target id, or to nil for a known
// non-match.
type Overrides map[string]*string

// Tables holds every manual correction: link overrides per target source
// and region assignments per anchor id.
type Tables struct {
	Links   map[string]Overrides `yaml:"links"`
	Regions map[string]string    `yaml:"regions"`
}

// For returns the link overrides of a target source, never nil.
func (t *Tables) For(source string) Overrides {
	if t == nil || t.Links[source] == nil {
		return Overrides{}
	}
	return t.Links[source]
}

// DefaultTables returns the override tables shipped with peakmap.
func DefaultTables() (*Tables, error) {
	return ParseTables(embedded.Overrides(), embedded.OverridesFile)
}

// LoadTables reads override tables from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseTables(data, path)
}

// ParseTables decodes override tables. name identifies the document in errors.
func ParseTables(data []byte, name string) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if t.Links == nil {
		t.Links = map[string]Overrides{}
	}
	if t.Regions == nil {
		t.Regions = map[string]string{}
	}
	return &t, nil
}
