package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/runlog"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagConfig, flagPreset, flagDBPath, flagLogLevel = "", "", "", ""
		flagSeed = 0
	})
}

func TestLoadConfigOverrides(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "staffclimb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulty:\n  platform_rate: 20\n"), 0o644))

	flagConfig = path
	flagPreset = "hard"
	flagDBPath = "/tmp/other.db"
	flagLogLevel = "debug"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "hard", cfg.Difficulty.Preset)
	assert.Equal(t, 12, cfg.Difficulty.PlatformRate)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.DBPath)

	logger, err := newLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestLoadConfigRejectsUnknownPreset(t *testing.T) {
	resetFlags(t)
	flagConfig = filepath.Join(t.TempDir(), "missing.yaml")
	require.NoError(t, os.WriteFile(flagConfig, []byte("{}\n"), 0o644))
	flagPreset = "nightmare"

	_, err := loadConfig()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSimulate(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulty.PlatformRate = 10

	res, err := simulate(context.Background(), cfg, log.New(io.Discard), 3, 11, 1200)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Index)
	assert.Equal(t, uint64(11), res.Seed)
	assert.LessOrEqual(t, res.Ticks, 1200)
	assert.Positive(t, res.Spawned)
	assert.Equal(t, res.Ticks, res.Update.Count)
	assert.NotEmpty(t, res.Runs, "the last attempt is recorded")

	last := res.Runs[len(res.Runs)-1]
	if res.Won {
		assert.Equal(t, runlog.OutcomeWon, last.Outcome)
	} else {
		assert.Equal(t, runlog.OutcomeAbandoned, last.Outcome)
	}
	assert.Len(t, res.Runs, res.Restarts+1)

	jumps := 0
	for _, r := range res.Runs {
		jumps += r.Jumps
	}
	assert.Equal(t, jumps, res.Jumps, "jumps add up over every attempt")
}

func TestSimulateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulate(ctx, config.Default(), log.New(io.Discard), 0, 1, 10000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport(t *testing.T) {
	var fast, slow Stats
	fast.Add(time.Millisecond)
	fast.Add(3 * time.Millisecond)
	slow.Add(5 * time.Millisecond)
	fast.Finalize()
	slow.Finalize()
	assert.Equal(t, 2*time.Millisecond, fast.Avg)

	r := &Report{
		Runs:       3,
		TickBudget: 600,
		Parallel:   2,
		Preset:     "normal",
		Step:       1.0 / 60.0,
		Results: []SessionResult{
			{Index: 0, Won: true, Ticks: 400, Restarts: 1, Spawned: 20, Update: fast},
			{Index: 1, Won: true, Ticks: 300, Spawned: 12, Update: slow},
			{Index: 2, Ticks: 600, Restarts: 4, Spawned: 24},
		},
	}
	r.Finalize()

	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 300, r.FastestWin)
	assert.Equal(t, 350.0, r.MeanWinTicks)
	assert.Equal(t, 5, r.TotalRestarts)
	assert.Equal(t, 56, r.TotalSpawned)
	assert.Equal(t, 21, r.TotalJumps)
	assert.Equal(t, 1300, r.TotalUpdates)
	assert.Equal(t, time.Millisecond, r.UpdateTime.Min)
	assert.Equal(t, 5*time.Millisecond, r.UpdateTime.Max)
	assert.Equal(t, 3*time.Millisecond, r.UpdateTime.Avg)

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Wins:** 2 / 3 (66.7%)")
	assert.Contains(t, out, "**Fastest Win:** 300 ticks (5s)")
	assert.Contains(t, out, "**Jumps:** 21")
	assert.Contains(t, out, "| 2 | 0 | no | 600 | 4 | 24 | 7 |")
}

func TestPrintRuns(t *testing.T) {
	cfg := config.Default()
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf bytes.Buffer
	require.NoError(t, printRuns(&buf, store, cfg, 10))
	assert.Contains(t, buf.String(), "No attempts recorded yet.")

	_, err = store.Save(runlog.Run{
		StartedAt:   time.Now(),
		Outcome:     runlog.OutcomeWon,
		Ticks:       1800,
		Platforms:   40,
		Jumps:       12,
		Preset:      "normal",
		Fingerprint: cfg.Fingerprint(),
	})
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, printRuns(&buf, store, cfg, 10))
	out := buf.String()
	assert.Contains(t, out, "won")
	assert.Contains(t, out, "1 attempts, 1 won, 0 lost, 0 abandoned")
	assert.Contains(t, out, "Fastest win: 30s, 40 platforms, 12 jumps")
}
