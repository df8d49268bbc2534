package app

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"trackroute/internal/routing"
	"trackroute/internal/telemetry"
	"trackroute/logging"
)

const (
	envListen  = "TRACKROUTE_LISTEN"
	envFixture = "TRACKROUTE_FIXTURE"
)

// ErrInvalidConfig marks configuration that failed to parse or validate.
var ErrInvalidConfig = errors.New("invalid config")

// ObservabilityConfig holds opt-in debugging endpoints.
type ObservabilityConfig struct {
	EnablePprof bool `yaml:"enablePprof"`
}

// Config describes one trackroute server.
type Config struct {
	Listen        string                  `yaml:"listen" validate:"required,hostname_port"`
	Fixture       string                  `yaml:"fixture" validate:"required"`
	Watch         bool                    `yaml:"watch"`
	Pathfinder    routing.Config          `yaml:"pathfinder"`
	Logging       logging.Config          `yaml:"logging"`
	Metrics       telemetry.MetricsConfig `yaml:"metrics"`
	Tracing       telemetry.TracingConfig `yaml:"tracing"`
	Observability ObservabilityConfig     `yaml:"observability"`
}

func DefaultConfig() Config {
	return Config{
		Listen:     ":8080",
		Pathfinder: routing.DefaultConfig(),
		Logging:    logging.DefaultConfig(),
		Metrics:    telemetry.DefaultMetricsConfig(),
		Tracing:    telemetry.DefaultTracingConfig(),
	}
}

// LoadConfig reads path over DefaultConfig, applies environment overrides
// and validates the result. A relative fixture path is taken relative to the
// config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data, os.LookupEnv)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	if cfg.Fixture != "" && !filepath.IsAbs(cfg.Fixture) {
		cfg.Fixture = filepath.Join(filepath.Dir(path), cfg.Fixture)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the defaults. lookup supplies environment
// overrides and may be nil.
func ParseConfig(data []byte, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "decode"), ErrInvalidConfig)
	}
	if lookup != nil {
		if v, ok := lookup(envListen); ok && v != "" {
			cfg.Listen = v
		}
		if v, ok := lookup(envFixture); ok && v != "" {
			cfg.Fixture = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "validate"), ErrInvalidConfig)
	}
	return nil
}
