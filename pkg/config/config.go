// Package config loads kernel-wide runtime settings: where tracks live
// on disk and the validator policy knobs, both as YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/trackmap/tsmkernel/pkg/validate"
)

// PolicyConfig is the YAML-loadable form of validate.Options, plus the
// tracks root the CLI tools resolve bare track names against.
type PolicyConfig struct {
	TracksRoot string `yaml:"tracksRoot"`

	ConnectivitySeverityError bool `yaml:"connectivitySeverityError"`
	RequireSafeZone           bool `yaml:"requireSafeZone"`
	RequireIntersection       bool `yaml:"requireIntersection"`
}

// DefaultPolicyConfig returns the zero-friction defaults: a "./Tracks"
// root and every optional policy check disabled.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{TracksRoot: "Tracks"}
}

// Options converts the loaded config into validate.Options.
func (c PolicyConfig) Options() validate.Options {
	return validate.Options{
		ConnectivitySeverityError: c.ConnectivitySeverityError,
		RequireSafeZone:           c.RequireSafeZone,
		RequireIntersection:       c.RequireIntersection,
	}
}

// LoadPolicyConfig reads and validates a YAML policy file.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := DefaultPolicyConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded config is usable.
func (c PolicyConfig) Validate() error {
	if strings.TrimSpace(c.TracksRoot) == "" {
		return fmt.Errorf("tracksRoot must not be empty")
	}
	return nil
}

// ResolveTrackPath resolves a bare track name against tracksRoot, or
// returns name verbatim if it already contains a path separator.
func ResolveTrackPath(tracksRoot, name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name
	}
	if !strings.HasSuffix(name, ".tsm") {
		name += ".tsm"
	}
	return filepath.Join(tracksRoot, name)
}
