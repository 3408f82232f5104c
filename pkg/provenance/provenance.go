// Package provenance records which source supplied each catalog field,
// including the coordinate citations that end up in a peak's notes.
package provenance

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/types"
)

// Provenance is one value a source offered for a field.
type Provenance struct {
	Source     types.SourceID `yaml:"source"`
	Field      string         `yaml:"field"`
	Value      any            `yaml:"value"`
	Timestamp  time.Time      `yaml:"timestamp"`
	Authority  int            `yaml:"authority,omitempty"`  // priority of Source for Field
	Similarity float64        `yaml:"similarity,omitempty"` // of the link that brought in the source row
	Reason     string         `yaml:"reason,omitempty"`     // selected or cited
}

// Map holds provenance keyed "resourceType:resourceID:field".
type Map map[string][]Provenance

// Resource returns the entries of one resource keyed by field.
func (m Map) Resource(resourceType types.ResourceType, resourceID string) map[string][]Provenance {
	result := make(map[string][]Provenance)
	prefix := key(resourceType, resourceID, "")
	for k, entries := range m {
		if field, ok := strings.CutPrefix(k, prefix); ok {
			result[field] = entries
		}
	}
	return result
}

// Field returns the entries of one field in recording order.
func (m Map) Field(resourceType types.ResourceType, resourceID, field string) []Provenance {
	return m[key(resourceType, resourceID, field)]
}

// Tracker collects provenance during a catalog build. It is safe for
// concurrent use.
type Tracker interface {
	// Track appends an entry. A zero Timestamp is set to now and an empty
	// Field to field.
	Track(resourceType types.ResourceType, resourceID, field string, entry Provenance)

	// Map returns a copy of everything tracked, or nil when disabled.
	Map() Map
}

// NewTracker creates a Tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	if !enabled {
		return nopTracker{}
	}
	return &tracker{entries: make(Map)}
}

type tracker struct {
	mu      sync.Mutex
	entries Map
}

func (t *tracker) Track(resourceType types.ResourceType, resourceID, field string, entry Provenance) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Field == "" {
		entry.Field = field
	}
	k := key(resourceType, resourceID, field)

	t.mu.Lock()
	t.entries[k] = append(t.entries[k], entry)
	t.mu.Unlock()
}

func (t *tracker) Map() Map {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(Map, len(t.entries))
	for k, v := range t.entries {
		out[k] = append([]Provenance(nil), v...)
	}
	return out
}

type nopTracker struct{}

func (nopTracker) Track(types.ResourceType, string, string, Provenance) {}
func (nopTracker) Map() Map                                             { return nil }

func key(resourceType types.ResourceType, resourceID, field string) string {
	return string(resourceType) + ":" + resourceID + ":" + field
}

// File is the on-disk form of a provenance map.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Load reads a provenance file. A missing file gives nil and no error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &f, nil
}

// Save writes m to path as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}
