package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/runlog"
	"github.com/plus3/staffclimb/scene"
)

var (
	flagRuns     int
	flagTicks    int
	flagParallel int
	flagRecord   bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run headless attempts with the autopilot",
	Long: `Play several sessions without a window, steering the player with the
built-in autopilot, and print a report. Each session runs until the staff is
reached or the tick budget is spent.

Examples:
  staffclimb sim
  staffclimb sim --runs 64 --parallel 8 --ticks 36000
  staffclimb sim --preset hard --seed 7 --record`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagRuns, "runs", 8, "Number of sessions")
	simCmd.Flags().IntVar(&flagTicks, "ticks", 60*60*3, "Tick budget per session")
	simCmd.Flags().IntVar(&flagParallel, "parallel", runtime.NumCPU(), "Sessions run at once")
	simCmd.Flags().BoolVar(&flagRecord, "record", false, "Save the attempts to the run history")
}

// SessionResult is the outcome of one headless session.
type SessionResult struct {
	Index    int
	Seed     uint64
	Won      bool
	Ticks    int
	Restarts int
	Spawned  int
	Jumps    int
	Update   Stats
	Runs     []runlog.Run
}

// runBuffer holds a session's runs until every session is done, so that
// sessions never write to SQLite concurrently.
type runBuffer struct {
	runs []runlog.Run
}

func (b *runBuffer) Save(r runlog.Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	b.runs = append(b.runs, r)
	return r.ID, nil
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if flagRuns <= 0 || flagTicks <= 0 {
		return fmt.Errorf("--runs and --ticks must be positive")
	}

	seed := flagSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	report := &Report{
		Runs:        flagRuns,
		TickBudget:  flagTicks,
		Parallel:    max(1, flagParallel),
		Preset:      cfg.Difficulty.Preset,
		Fingerprint: cfg.Fingerprint(),
		Seed:        seed,
		Step:        cfg.Physics.FixedTimeStep,
		Results:     make([]SessionResult, flagRuns),
	}

	logger.Info("simulating", "runs", flagRuns, "ticks", flagTicks, "parallel", report.Parallel, "seed", seed)
	start := time.Now()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(report.Parallel)
	for i := range flagRuns {
		g.Go(func() error {
			res, err := simulate(ctx, cfg, logger.With("session", i), i, seed+uint64(i), flagTicks)
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	report.Elapsed = time.Since(start)
	report.Finalize()

	if flagRecord {
		if err := record(cfg, report.Results); err != nil {
			return err
		}
	}
	return report.Generate(os.Stdout)
}

// simulate plays one session with the autopilot until it wins or the tick
// budget runs out.
func simulate(ctx context.Context, cfg config.Config, logger *log.Logger, index int, seed uint64, budget int) (SessionResult, error) {
	s, err := scene.New(cfg, scene.WithLogger(logger), scene.WithSeed(seed))
	if err != nil {
		return SessionResult{}, err
	}

	runs := &runBuffer{}
	recorder := runlog.NewRecorder(runs, cfg.Difficulty.Preset, cfg.Fingerprint(), logger)
	pilot := &scene.Autopilot{}
	res := SessionResult{Index: index, Seed: seed}
	step := cfg.Physics.FixedTimeStep

	for tick := 1; tick <= budget; tick++ {
		if tick%600 == 1 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		s.SetInput(pilot.Next(s))
		begin := time.Now()
		s.Update(step)
		res.Update.Add(time.Since(begin))

		events := s.Events()
		for _, e := range events {
			if e.Kind == scene.EventGameOver || e.Kind == scene.EventRestart {
				res.Jumps += e.Attempt.Jumps
			}
		}
		if err := recorder.Handle(events); err != nil {
			return res, err
		}
		res.Ticks = tick
		if s.State().Phase == scene.PhaseWon {
			res.Won = true
			break
		}
	}

	state := s.State()
	if err := recorder.Finish(state.Attempt); err != nil {
		return res, err
	}
	res.Restarts = state.Restarts
	res.Spawned = state.Spawned
	res.Jumps += state.Attempt.Jumps
	res.Runs = runs.runs
	res.Update.Finalize()

	logger.Debug("session done", "won", res.Won, "ticks", res.Ticks, "restarts", res.Restarts)
	return res, nil
}

func record(cfg config.Config, results []SessionResult) error {
	store, err := runlog.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		for _, r := range res.Runs {
			if _, err := store.Save(r); err != nil {
				return err
			}
		}
	}
	return nil
}
