package names

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/peakmap/internal/embedded"
	"github.com/agentstation/peakmap/internal/matcher"
	"github.com/agentstation/peakmap/pkg/errors"
)

// Rules is the configuration of a Normalizer.
type Rules struct {
	// Rules rewrite upper-cased tokens, in order.
	Rules []matcher.Rule `yaml:"rules" validate:"dive"`

	// Ignore lists patterns for tokens that are dropped.
	Ignore []string `yaml:"ignore"`

	// Titles lists patterns for qualifier tokens moved into the title.
	Titles []string `yaml:"titles"`
}

var validate = validator.New()

// DefaultRules returns the rules shipped with peakmap.
func DefaultRules() (*Rules, error) {
	return ParseRules(embedded.Rules(), embedded.RulesFile)
}

// LoadRules reads rules from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseRules(data, path)
}

// ParseRules decodes and validates a rules document. name identifies the
// document in errors.
func ParseRules(data []byte, name string) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if err := validate.Struct(&r); err != nil {
		return nil, &errors.ValidationError{
			Field:   "rules",
			Message: fmt.Sprintf("%s: %v", name, err),
		}
	}
	return &r, nil
}
