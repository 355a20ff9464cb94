package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultYAML []byte

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic("config: embedded defaults are malformed: " + err.Error())
	}
	return cfg
}

// Load reads the configuration.
// Search order: customPath -> ~/.staffclimb/config.yaml -> ./staffclimb.yaml -> embedded default.
// A file found on the search path overlays the embedded defaults, so it only
// needs to name the values it changes.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		if err := overlay(&cfg, customPath); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath("config.yaml"), "staffclimb.yaml"} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := overlay(&cfg, path); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	return cfg, cfg.Validate()
}

// Parse overlays raw YAML onto the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

func overlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".staffclimb", filename)
}

// Fingerprint identifies the gameplay-relevant part of the configuration.
// Attempts recorded under the same fingerprint were played under the same rules.
func (c *Config) Fingerprint() string {
	gameplay := struct {
		Difficulty Difficulty `yaml:"difficulty"`
		Physics    Physics    `yaml:"physics"`
		Grid       Grid       `yaml:"grid"`
		Platform   Platform   `yaml:"platform"`
		Trophy     Trophy     `yaml:"trophy"`
		Player     Player     `yaml:"player"`
	}{c.Difficulty, c.Physics, c.Grid, c.Platform, c.Trophy, c.Player}

	data, err := yaml.Marshal(gameplay)
	if err != nil {
		panic("config: cannot marshal gameplay section: " + err.Error())
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
