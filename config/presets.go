package config

import "fmt"

// Preset names a difficulty preset.
type Preset string

const (
	PresetEasy   Preset = "easy"
	PresetNormal Preset = "normal"
	PresetHard   Preset = "hard"
)

// ParsePreset converts a preset name, accepting the empty string as normal.
func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case "", PresetNormal:
		return PresetNormal, nil
	case PresetEasy:
		return PresetEasy, nil
	case PresetHard:
		return PresetHard, nil
	default:
		return "", fmt.Errorf("%w: unknown preset %q (want easy, normal or hard)", ErrInvalidConfig, s)
	}
}

// ApplyPreset modifies the difficulty section relative to the loaded values.
// Normal leaves them untouched.
func ApplyPreset(cfg *Config, preset Preset) {
	cfg.Difficulty.Preset = string(preset)

	switch preset {
	case PresetEasy:
		cfg.Difficulty.GravityMultiplier *= 0.7
		cfg.Difficulty.PlatformRate = cfg.Difficulty.PlatformRate * 3 / 2
	case PresetHard:
		cfg.Difficulty.GravityMultiplier *= 1.5
		cfg.Difficulty.PlatformRate = max(1, cfg.Difficulty.PlatformRate*3/5)
	}
}
