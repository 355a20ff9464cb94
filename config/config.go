// Package config provides YAML-based configuration for the staffclimb scene:
// difficulty, physics tuning, platform and player geometry, the message
// timeline, and the window, audio and storage settings of the front end.
package config

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete scene configuration.
type Config struct {
	Difficulty Difficulty `yaml:"difficulty"`
	Physics    Physics    `yaml:"physics"`
	Grid       Grid       `yaml:"grid"`
	Platform   Platform   `yaml:"platform"`
	Trophy     Trophy     `yaml:"trophy"`
	Player     Player     `yaml:"player"`
	Messages   []Message  `yaml:"messages"`
	Text       Text       `yaml:"text"`
	UI         UI         `yaml:"ui"`
	Window     Window     `yaml:"window"`
	Audio      Audio      `yaml:"audio"`
	Storage    Storage    `yaml:"storage"`
	Log        Log        `yaml:"log"`
}

// Difficulty holds the tuning knobs of the scene.
type Difficulty struct {
	Preset            string  `yaml:"preset"`
	TrophyHeight      float64 `yaml:"trophy_height"`
	GravityMultiplier float64 `yaml:"gravity_multiplier"`
	// PlatformRate is the number of updates between platform spawns.
	PlatformRate int `yaml:"platform_rate"`
}

// Physics configures the rigid-body world.
type Physics struct {
	Gravity           float64 `yaml:"gravity"`
	FixedTimeStep     float64 `yaml:"fixed_time_step"`
	MaxSubSteps       int     `yaml:"max_sub_steps"`
	GroundFriction    float64 `yaml:"ground_friction"`
	GroundRestitution float64 `yaml:"ground_restitution"`
	// StrikeSpeed is the downward speed above which a platform touching the
	// player counts as a hit.
	StrikeSpeed float64 `yaml:"strike_speed"`
	Iterations  int     `yaml:"iterations"`
}

// Grid describes the spawn columns of the parcel.
type Grid struct {
	Columns int     `yaml:"columns"`
	Cell    float64 `yaml:"cell"`
}

// Platform describes the falling platforms.
type Platform struct {
	Mass              float64 `yaml:"mass"`
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	SpawnHeightFactor float64 `yaml:"spawn_height_factor"`
	Albedo            RGB     `yaml:"albedo"`
	Metallic          float64 `yaml:"metallic"`
	Roughness         float64 `yaml:"roughness"`
}

// Trophy describes the goal entity.
type Trophy struct {
	X                float64 `yaml:"x"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	InteractDistance float64 `yaml:"interact_distance"`
	HoverText        string  `yaml:"hover_text"`
}

// Player describes the avatar body and its controls.
type Player struct {
	SpawnX    float64 `yaml:"spawn_x"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Mass      float64 `yaml:"mass"`
	Speed     float64 `yaml:"speed"`
	JumpSpeed float64 `yaml:"jump_speed"`
	Gravity   float64 `yaml:"gravity"`
}

// Message is a timeline entry: at Tick updates after a (re)start the UI text
// becomes Text.
type Message struct {
	Tick int    `yaml:"tick"`
	Text string `yaml:"text"`
}

// Text holds the fixed status lines.
type Text struct {
	GameOver string `yaml:"game_over"`
	Victory  string `yaml:"victory"`
	Restart  string `yaml:"restart"`
}

// UI configures the status text block.
type UI struct {
	FontSize float64 `yaml:"font_size"`
	HAlign   string  `yaml:"h_align"`
	VAlign   string  `yaml:"v_align"`
}

// Window configures the ebiten window.
type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// ViewHeight is the world height in meters visible on screen.
	ViewHeight float64 `yaml:"view_height"`
}

// Audio configures sound cues.
type Audio struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// Storage configures the run history database.
type Storage struct {
	DBPath string `yaml:"db_path"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

// RGB is a color in the YAML form [r, g, b].
type RGB [3]uint8

// RGBA returns the opaque color.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// ArenaWidth is the width of the parcel in meters.
func (c *Config) ArenaWidth() float64 {
	return float64(c.Grid.Columns) * c.Grid.Cell
}

// SpawnHeight is the height new platforms are dropped from.
func (c *Config) SpawnHeight() float64 {
	return c.Platform.SpawnHeightFactor * c.Difficulty.TrophyHeight
}

// WorldGravity is the gravity applied to platforms, scaled by the difficulty.
func (c *Config) WorldGravity() float64 {
	return c.Physics.Gravity * c.Difficulty.GravityMultiplier
}

// Validate reports the first inconsistency found.
func (c *Config) Validate() error {
	switch {
	case c.Difficulty.TrophyHeight <= 0:
		return fmt.Errorf("%w: difficulty.trophy_height must be positive", ErrInvalidConfig)
	case c.Difficulty.GravityMultiplier <= 0:
		return fmt.Errorf("%w: difficulty.gravity_multiplier must be positive", ErrInvalidConfig)
	case c.Difficulty.PlatformRate <= 0:
		return fmt.Errorf("%w: difficulty.platform_rate must be positive", ErrInvalidConfig)
	case c.Physics.Gravity <= 0:
		return fmt.Errorf("%w: physics.gravity must be positive", ErrInvalidConfig)
	case c.Physics.FixedTimeStep <= 0:
		return fmt.Errorf("%w: physics.fixed_time_step must be positive", ErrInvalidConfig)
	case c.Physics.MaxSubSteps <= 0:
		return fmt.Errorf("%w: physics.max_sub_steps must be positive", ErrInvalidConfig)
	case c.Grid.Columns <= 0 || c.Grid.Cell <= 0:
		return fmt.Errorf("%w: grid needs positive columns and cell", ErrInvalidConfig)
	case c.Platform.Mass <= 0 || c.Platform.Width <= 0 || c.Platform.Height <= 0:
		return fmt.Errorf("%w: platform needs positive mass and size", ErrInvalidConfig)
	case c.Platform.Width > c.Grid.Cell:
		return fmt.Errorf("%w: platform.width %.2f exceeds grid.cell %.2f", ErrInvalidConfig, c.Platform.Width, c.Grid.Cell)
	case c.Platform.SpawnHeightFactor <= 0:
		return fmt.Errorf("%w: platform.spawn_height_factor must be positive", ErrInvalidConfig)
	case c.SpawnHeight()-c.Platform.Height/2 <= c.Difficulty.TrophyHeight:
		return fmt.Errorf("%w: platforms spawned at %.2f would not clear trophy_height %.2f", ErrInvalidConfig, c.SpawnHeight(), c.Difficulty.TrophyHeight)
	case c.Player.Mass <= 0 || c.Player.Width <= 0 || c.Player.Height <= 0:
		return fmt.Errorf("%w: player needs positive mass and size", ErrInvalidConfig)
	case c.Player.Gravity <= 0:
		return fmt.Errorf("%w: player.gravity must be positive", ErrInvalidConfig)
	case c.Player.Speed <= 0 || c.Player.JumpSpeed <= 0:
		return fmt.Errorf("%w: player needs positive speed and jump_speed", ErrInvalidConfig)
	case c.Player.SpawnX <= 0 || c.Player.SpawnX >= c.ArenaWidth():
		return fmt.Errorf("%w: player.spawn_x %.2f outside the arena", ErrInvalidConfig, c.Player.SpawnX)
	case c.Trophy.Width <= 0 || c.Trophy.Height <= 0:
		return fmt.Errorf("%w: trophy needs a positive size", ErrInvalidConfig)
	case c.Trophy.X <= 0 || c.Trophy.X >= c.ArenaWidth():
		return fmt.Errorf("%w: trophy.x %.2f outside the arena", ErrInvalidConfig, c.Trophy.X)
	case c.Trophy.InteractDistance <= 0:
		return fmt.Errorf("%w: trophy.interact_distance must be positive", ErrInvalidConfig)
	case c.UI.FontSize <= 0:
		return fmt.Errorf("%w: ui.font_size must be positive", ErrInvalidConfig)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window needs a positive width and height", ErrInvalidConfig)
	case c.Window.ViewHeight <= 0:
		return fmt.Errorf("%w: window.view_height must be positive", ErrInvalidConfig)
	}

	last := 0
	for i, msg := range c.Messages {
		if msg.Tick <= last {
			return fmt.Errorf("%w: messages[%d].tick %d is not after %d", ErrInvalidConfig, i, msg.Tick, last)
		}
		last = msg.Tick
	}

	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalidConfig)
	}

	return nil
}
