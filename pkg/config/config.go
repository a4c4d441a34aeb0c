// Package config holds the settings of a spec run: a YAML file
// overlaid with SPECRUN_* environment variables and validated
// before the runner starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"digital.vasic.specs/pkg/version"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the configuration of a spec run.
type Config struct {
	// TargetVersion is the version gates are evaluated against.
	TargetVersion string   `yaml:"target_version" validate:"omitempty,version"`
	Platform      string   `yaml:"platform"`
	Features      []string `yaml:"features"`

	Parallel int           `yaml:"parallel" validate:"gte=1,lte=256"`
	Deadline time.Duration `yaml:"deadline"`
	Strict   bool          `yaml:"strict"`

	Verbose  bool   `yaml:"verbose"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" validate:"oneof=spec dot json markdown html"`

	ResultsDir  string `yaml:"results_dir"`
	MonitorAddr string `yaml:"monitor_addr" validate:"omitempty,hostname_port"`

	// Suites selects built-in suites by name; empty means all.
	Suites []string `yaml:"suites"`
	// Banks are bank files or directories to load.
	Banks []string `yaml:"banks"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("version", func(fl validator.FieldLevel) bool {
		_, err := version.Parse(fl.Field().String())
		return err == nil
	})
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Platform: runtime.GOOS,
		Parallel: 1,
		Strict:   true,
		LogLevel: "info",
		Format:   "spec",
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if err := configValidate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf(
				"%s: failed %q validation (value %v)",
				fe.Field(), fe.Tag(), fe.Value(),
			))
		}
	}
	if c.Deadline < 0 {
		problems = append(problems, "Deadline: must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Target builds the gate target. Without a target version only
// ungated and unbounded content is included.
func (c *Config) Target() (version.Target, error) {
	if c.TargetVersion == "" {
		t := version.Target{
			Platform: c.Platform,
			Features: make(map[string]bool, len(c.Features)),
		}
		for _, f := range c.Features {
			t.Features[f] = true
		}
		return t, nil
	}
	t, err := version.NewTarget(c.TargetVersion, c.Platform, c.Features...)
	if err != nil {
		return version.Target{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return t, nil
}
