// Package config holds runtime configuration: the YAML config file, the
// global CLI options shared by every subcommand, and their validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/ytsub/internal/failure"
)

// DefaultConfigPath is read when --config is not given. Unlike an explicit
// path, it is allowed to be missing.
const DefaultConfigPath = "config.yaml"

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config is the parsed config file. It is read-only once [Load] returns;
// jobs receive it by pointer but never modify it.
type Config struct {
	Configuration Configuration             `yaml:"configuration"`
	Presets       map[string]map[string]any `yaml:"presets"`
}

// Configuration is the `configuration:` section of the config file.
type Configuration struct {
	WorkingDirectory string            `yaml:"working_directory"` // Default: ".ytsub-working-directory".
	DLAliases        map[string]string `yaml:"dl_aliases"`        // alias -> replacement tokens for `dl`.
	Color            ColorMode         `yaml:"color"`             // Default: "auto".
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Configuration: Configuration{
			WorkingDirectory: ".ytsub-working-directory",
			DLAliases:        map[string]string{},
			Color:            ColorAuto,
		},
		Presets: map[string]map[string]any{},
	}
}

// Load reads and validates the config file at path. When explicit is false
// (path came from the default) a missing file yields [DefaultConfig].
func Load(path string, explicit bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if explicit {
			return nil, failure.Wrapf(failure.KindFileNotFound, err,
				"The config file '%s' could not be found. Did you set --config correctly?", path)
		}
		cfg := DefaultConfig()
		return &cfg, nil
	}
	if err != nil {
		return nil, failure.Wrapf(failure.KindFileNotFound, err, "cannot read config file '%s': %v", path, err)
	}
	return Parse(path, data)
}

// Parse decodes config YAML. Unknown fields are rejected so that misspelled
// options surface instead of being silently ignored.
func Parse(name string, data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, failure.Wrapf(failure.KindInvalidConfig, err, "invalid config file '%s': %v", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, failure.Wrapf(failure.KindInvalidConfig, err, "invalid config file '%s': %v", name, err)
	}
	return &cfg, nil
}

// Validate checks enum fields, alias names and preset names.
func (c *Config) Validate() error {
	switch c.Configuration.Color {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color %q (use 'auto', 'always' or 'never')", c.Configuration.Color)
	}
	if strings.TrimSpace(c.Configuration.WorkingDirectory) == "" {
		return errors.New("configuration.working_directory must not be empty")
	}
	for _, alias := range sortedKeys(c.Configuration.DLAliases) {
		if alias == "" || strings.HasPrefix(alias, "-") || strings.ContainsAny(alias, " =") {
			return fmt.Errorf("invalid dl_aliases name %q (use a bare word such as 'mv')", alias)
		}
		if strings.TrimSpace(c.Configuration.DLAliases[alias]) == "" {
			return fmt.Errorf("dl_aliases entry %q has an empty expansion", alias)
		}
	}
	for name, opts := range c.Presets {
		if name == "" || strings.HasPrefix(name, "__") {
			return fmt.Errorf("invalid preset name %q", name)
		}
		if opts == nil {
			return fmt.Errorf("preset %q must be a mapping of options", name)
		}
	}
	return nil
}

// PresetNames returns the names of the presets defined in the config, sorted.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
