package app

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/sources"
)

// EnvPrefix prefixes every environment variable read into the configuration.
const EnvPrefix = "PEAKMAP"

// Config holds the application configuration loaded from the config file,
// PEAKMAP_* environment variables and .env files. Flags are applied on top
// by the commands.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string `validate:"omitempty,oneof=table wide json yaml"`

	// Config file
	ConfigFile string

	// Inputs
	AnchorPath    string
	SurveyPath    string
	RegistryPath  string
	RegionsPath   string
	RulesPath     string
	OverridesPath string

	// Linkage
	SurveyThreshold   float64 `validate:"gte=0,lte=1"`
	RegistryThreshold float64 `validate:"gte=0,lte=1"`
	PrimaryOverride   float64 `validate:"gte=0,lte=1"`
	Workers           int     `validate:"gte=0,lte=256"`

	// Outputs
	OutDir      string `validate:"required"`
	SQLitePath  string
	MetricsFile string
	Provenance  bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

var validate = validator.New()

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Environment variables (PEAKMAP_SURVEY, PEAKMAP_OUT, ...)
//  2. .env and .env.local files
//  3. Config file (path, or ~/.peakmap.yaml and ./.peakmap.yaml)
//  4. Defaults
//
// Command-line flags are applied afterwards with UpdateFromFlags.
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".peakmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		AnchorPath:    v.GetString("anchor"),
		SurveyPath:    v.GetString("survey"),
		RegistryPath:  v.GetString("registry"),
		RegionsPath:   v.GetString("regions"),
		RulesPath:     v.GetString("rules"),
		OverridesPath: v.GetString("overrides"),

		SurveyThreshold:   v.GetFloat64("survey_threshold"),
		RegistryThreshold: v.GetFloat64("registry_threshold"),
		PrimaryOverride:   v.GetFloat64("primary_override"),
		Workers:           v.GetInt("workers"),

		OutDir:      v.GetString("out"),
		SQLitePath:  v.GetString("sqlite"),
		MetricsFile: v.GetString("metrics_file"),
		Provenance:  v.GetBool("provenance"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("survey_threshold", constants.SurveyThreshold)
	v.SetDefault("registry_threshold", constants.RegistryThreshold)
	v.SetDefault("primary_override", constants.PrimaryOverride)
	v.SetDefault("out", ".")
}

// UpdateFromFlags updates config values from parsed global flags.
// Flag values take precedence over the config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// UpdateInputs replaces the input paths that are set.
func (c *Config) UpdateInputs(anchor, survey, registry, regions string) {
	for _, u := range []struct {
		dst *string
		src string
	}{
		{&c.AnchorPath, anchor},
		{&c.SurveyPath, survey},
		{&c.RegistryPath, registry},
		{&c.RegionsPath, regions},
	} {
		if u.src != "" {
			*u.dst = u.src
		}
	}
}

// Sources returns the configured source table paths.
func (c *Config) Sources() sources.Paths {
	return sources.Paths{
		Anchor:   c.AnchorPath,
		Survey:   c.SurveyPath,
		Registry: c.RegistryPath,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validationError(validate.Struct(c))
}

// ValidateSources checks that every source table path is set.
func (c *Config) ValidateSources() error {
	paths := c.Sources()
	return validationError(validate.Struct(&paths))
}

// validationError converts the first validator failure to a ValidationError.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !stderrors.As(err, &fields) || len(fields) == 0 {
		return &errors.ValidationError{Message: err.Error()}
	}
	fe := fields[0]
	return &errors.ValidationError{
		Field:   strings.ToLower(fe.Field()),
		Value:   fe.Value(),
		Message: fmt.Sprintf("failed %q check", fe.Tag()),
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
