// staffclimb is a small physics game: climb the tower of falling platforms
// and grab the staff at the top before a platform lands on you.
//
// Usage:
//
//	staffclimb [play]          - Play in a window
//	staffclimb sim             - Run headless attempts with the autopilot
//	staffclimb runs            - Show recorded attempts
//
// Global flags:
//
//	--config <path>    - Configuration file (default: search path, then built-in)
//	--preset <name>    - Difficulty preset: easy, normal or hard
//	--seed <value>     - RNG seed for platform placement (0 = random)
//	--db <path>        - Run history database (default: ~/.staffclimb/runs.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/scene"
)

var (
	flagConfig   string
	flagPreset   string
	flagSeed     uint64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "staffclimb",
	Short: "Climb the falling platforms and grab the staff",
	Long: `staffclimb drops platforms onto a 4x4 grid of columns. They pile up into
a tower; climb it and interact with the staff at the top. A falling platform
that lands on you clears the tower.

Controls: A/D or arrows to move, Space/W to jump, E or click to interact,
R to restart, Esc/Q to quit.

Examples:
  staffclimb
  staffclimb play --preset hard
  staffclimb sim --runs 32 --parallel 8
  staffclimb runs`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Difficulty preset (easy, normal, hard)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the run history database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig resolves the configuration and applies the command-line
// overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	name := flagPreset
	if name == "" {
		name = cfg.Difficulty.Preset
	}
	preset, err := config.ParsePreset(name)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "staffclimb",
		Level:           level,
	}), nil
}

// setup loads the configuration and builds the logger every command needs.
func setup() (config.Config, *log.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	logger.Debug("configuration loaded", "preset", cfg.Difficulty.Preset, "fingerprint", cfg.Fingerprint())
	return cfg, logger, nil
}

func sceneOptions(logger *log.Logger, seed uint64) []scene.Option {
	opts := []scene.Option{scene.WithLogger(logger)}
	if seed != 0 {
		opts = append(opts, scene.WithSeed(seed))
	}
	return opts
}
