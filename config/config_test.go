package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8.0, cfg.Difficulty.TrophyHeight)
	assert.Equal(t, 0.1, cfg.Difficulty.GravityMultiplier)
	assert.Equal(t, 25, cfg.Difficulty.PlatformRate)
	assert.Equal(t, 3, cfg.Physics.MaxSubSteps)
	assert.InDelta(t, 1.0/60.0, cfg.Physics.FixedTimeStep, 1e-12)
	assert.Equal(t, 16.0, cfg.ArenaWidth())
	assert.Equal(t, 24.0, cfg.SpawnHeight())
	assert.InDelta(t, 0.98, cfg.WorldGravity(), 1e-9)
	assert.Equal(t, RGB{0, 255, 0}, cfg.Platform.Albedo)
	assert.Equal(t, "Interact", cfg.Trophy.HoverText)

	require.Len(t, cfg.Messages, 3)
	assert.Equal(t, Message{Tick: 100, Text: "Grab the Staff at the top"}, cfg.Messages[0])
	assert.Equal(t, Message{Tick: 300, Text: "Avoid the falling platforms"}, cfg.Messages[1])
	assert.Equal(t, Message{Tick: 500, Text: ""}, cfg.Messages[2])
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("difficulty:\n  platform_rate: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Difficulty.PlatformRate)
	assert.Equal(t, 8.0, cfg.Difficulty.TrophyHeight, "untouched values keep their defaults")
	assert.Len(t, cfg.Messages, 3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero platform rate", func(c *Config) { c.Difficulty.PlatformRate = 0 }},
		{"negative trophy height", func(c *Config) { c.Difficulty.TrophyHeight = -1 }},
		{"zero time step", func(c *Config) { c.Physics.FixedTimeStep = 0 }},
		{"zero sub steps", func(c *Config) { c.Physics.MaxSubSteps = 0 }},
		{"platform wider than cell", func(c *Config) { c.Platform.Width = 5 }},
		{"player outside arena", func(c *Config) { c.Player.SpawnX = 20 }},
		{"zero spawn height factor", func(c *Config) { c.Platform.SpawnHeightFactor = 0 }},
		{"spawn below trophy", func(c *Config) { c.Platform.SpawnHeightFactor = 1 }},
		{"zero view height", func(c *Config) { c.Window.ViewHeight = 0 }},
		{"zero window width", func(c *Config) { c.Window.Width = 0 }},
		{"negative window height", func(c *Config) { c.Window.Height = -1 }},
		{"negative world gravity", func(c *Config) { c.Physics.Gravity = -9.8 }},
		{"zero player gravity", func(c *Config) { c.Player.Gravity = 0 }},
		{"zero player speed", func(c *Config) { c.Player.Speed = 0 }},
		{"zero trophy width", func(c *Config) { c.Trophy.Width = 0 }},
		{"negative staff height", func(c *Config) { c.Trophy.Height = -1.6 }},
		{"trophy left of arena", func(c *Config) { c.Trophy.X = -40 }},
		{"trophy right of arena", func(c *Config) { c.Trophy.X = 16 }},
		{"zero font size", func(c *Config) { c.UI.FontSize = 0 }},
		{"unordered messages", func(c *Config) {
			c.Messages = []Message{{Tick: 300}, {Tick: 100}}
		}},
		{"audio without sample rate", func(c *Config) {
			c.Audio.Enabled = true
			c.Audio.SampleRate = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseRejectsInvalidSizes(t *testing.T) {
	for _, doc := range []string{
		"platform:\n  spawn_height_factor: 0\n",
		"window:\n  view_height: 0\n",
		"physics:\n  gravity: -9.8\n",
		"player:\n  gravity: 0\n",
		"trophy:\n  x: -40\n",
	} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidConfig, doc)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trophy:\n  interact_distance: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Trophy.InteractDistance)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("difficulty: [broken"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"", "normal", "easy", "hard"} {
		_, err := ParsePreset(name)
		assert.NoError(t, err, name)
	}
	_, err := ParsePreset("nightmare")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	easy := Default()
	ApplyPreset(&easy, PresetEasy)
	assert.Greater(t, easy.Difficulty.PlatformRate, 25)
	assert.Less(t, easy.Difficulty.GravityMultiplier, 0.1)

	hard := Default()
	ApplyPreset(&hard, PresetHard)
	assert.Less(t, hard.Difficulty.PlatformRate, 25)
	assert.Greater(t, hard.Difficulty.GravityMultiplier, 0.1)
	assert.Equal(t, "hard", hard.Difficulty.Preset)
	require.NoError(t, hard.Validate())
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Window.Width = 1024
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "window settings do not change the rules")

	b.Difficulty.PlatformRate = 12
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
