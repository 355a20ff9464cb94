package scene_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/physics"
	"github.com/plus3/staffclimb/scene"
)

const frame = 1.0 / 60.0

func newScene(t *testing.T, mutate func(*config.Config)) *scene.Scene {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := scene.New(cfg, scene.WithSeed(1))
	require.NoError(t, err)
	return s
}

// noSpawns keeps the regular cadence from dropping platforms during a test.
func noSpawns(c *config.Config) {
	c.Difficulty.PlatformRate = 1 << 30
}

func update(s *scene.Scene, n int) {
	for range n {
		s.Update(frame)
	}
}

func countEvents(events []scene.Event, kind scene.EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func nearestColumn(x float64) float64 {
	best := 2.0
	for _, c := range []float64{6, 10, 14} {
		if math.Abs(c-x) < math.Abs(best-x) {
			best = c
		}
	}
	return best
}

func TestSetup(t *testing.T) {
	s := newScene(t, nil)

	state := s.State()
	assert.Equal(t, scene.PhasePlaying, state.Phase)
	assert.Zero(t, state.Tick)

	text := s.Text()
	assert.Empty(t, text.Value)
	assert.Equal(t, 30.0, text.FontSize)
	assert.Equal(t, "center", text.HAlign)
	assert.Equal(t, "top", text.VAlign)

	trophy := s.TrophyPosition()
	assert.Equal(t, 8.0, trophy[0])
	assert.InDelta(t, 8.8, trophy[1], 1e-9)

	assert.Equal(t, 1.0, s.PlayerPosition()[0])
	assert.Empty(t, s.Platforms())
	assert.Equal(t, 1, s.World().Len(), "only the player has a body")
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulty.PlatformRate = 0
	_, err := scene.New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestTimeline(t *testing.T) {
	s := newScene(t, noSpawns)

	update(s, 99)
	assert.Empty(t, s.Text().Value)

	update(s, 1)
	assert.Equal(t, 100, s.State().Tick)
	assert.Equal(t, "Grab the Staff at the top", s.Text().Value)

	update(s, 199)
	assert.Equal(t, "Grab the Staff at the top", s.Text().Value)
	update(s, 1)
	assert.Equal(t, "Avoid the falling platforms", s.Text().Value)

	update(s, 200)
	assert.Empty(t, s.Text().Value)
}

func TestSpawnCadence(t *testing.T) {
	s := newScene(t, nil)
	update(s, 100)

	platforms := s.Platforms()
	require.Len(t, platforms, 4)
	assert.Equal(t, 4, s.World().Count(physics.KindPlatform))
	assert.Equal(t, 4, countEvents(s.Events(), scene.EventSpawn))
	assert.Equal(t, 4, s.State().Attempt.Platforms)

	ticks := map[int]bool{}
	for _, p := range platforms {
		ticks[p.SpawnTick] = true
		assert.InDelta(t, nearestColumn(p.Position[0]), p.Position[0], 0.05)
		assert.Less(t, p.Position[1], 25.0)
		assert.Greater(t, p.Position[1], 20.0)

		pos, ok := s.World().Position(p.Body)
		require.True(t, ok, "every platform entity has a body")
		assert.Equal(t, mgl64.Vec2{pos.X, pos.Y}, p.Position, "transform mirrors the body")
	}
	assert.Equal(t, map[int]bool{25: true, 50: true, 75: true, 100: true}, ticks)
}

func TestSeedIsReproducible(t *testing.T) {
	columns := func() []float64 {
		cfg := config.Default()
		cfg.Difficulty.PlatformRate = 5
		s, err := scene.New(cfg, scene.WithSeed(42))
		require.NoError(t, err)

		var xs []float64
		for range 60 {
			s.Update(frame)
			for _, e := range s.Events() {
				if e.Kind == scene.EventSpawn {
					xs = append(xs, e.Position[0])
				}
			}
		}
		return xs
	}

	first := columns()
	require.Len(t, first, 12)
	assert.Equal(t, first, columns())
}

func TestSpawnPosition(t *testing.T) {
	grid := config.Grid{Columns: 4, Cell: 4}
	rng := rand.New(rand.NewPCG(7, 7))

	seen := map[float64]int{}
	for range 1000 {
		pos := scene.SpawnPosition(rng, grid, 24)
		assert.Equal(t, 24.0, pos[1])
		seen[pos[0]]++
	}

	require.Len(t, seen, 4)
	for _, x := range []float64{2, 6, 10, 14} {
		assert.Greater(t, seen[x], 150, "column %.0f is drawn uniformly", x)
	}
}

func TestFallingPlatformRestartsTheGame(t *testing.T) {
	s := newScene(t, noSpawns)
	update(s, 120)
	s.Events()

	s.SpawnPlatform(2, 5)
	require.Len(t, s.Platforms(), 1)

	var gameOver *scene.Event
	for range 300 {
		s.Update(frame)
		for _, e := range s.Events() {
			if e.Kind == scene.EventGameOver {
				gameOver = &e
			}
		}
		if gameOver != nil {
			break
		}
	}

	require.NotNil(t, gameOver, "the platform lands on the player")
	assert.Equal(t, 1, gameOver.Attempt.Platforms)
	assert.Greater(t, gameOver.Attempt.Ticks, 120)

	state := s.State()
	assert.Equal(t, "Game Over, restarting..", s.Text().Value)
	assert.Zero(t, state.Tick, "the message timer starts over")
	assert.Equal(t, 1, state.Restarts)
	assert.Equal(t, scene.Attempt{}, state.Attempt)
	assert.Empty(t, s.Platforms())
	assert.Zero(t, s.World().Count(physics.KindPlatform))

	update(s, 100)
	assert.Equal(t, "Grab the Staff at the top", s.Text().Value, "hints replay after a restart")
}

// strikeTick runs a scene in which a platform lands on the player and
// returns the number of updates until the game over.
func strikeTick(t *testing.T) int {
	t.Helper()
	s := newScene(t, noSpawns)
	update(s, 120)
	s.SpawnPlatform(2, 5)

	for n := 1; n <= 300; n++ {
		s.Update(frame)
		if countEvents(s.Events(), scene.EventGameOver) > 0 {
			return n
		}
	}
	t.Fatal("the platform never landed on the player")
	return 0
}

func TestGameOverBeatsManualRestart(t *testing.T) {
	n := strikeTick(t)

	s := newScene(t, noSpawns)
	update(s, 120)
	s.SpawnPlatform(2, 5)
	update(s, n-1)
	s.Events()

	s.SetInput(scene.Input{Restart: true})
	update(s, 1)

	events := s.Events()
	require.Len(t, events, 1, "one restart per update")
	assert.Equal(t, scene.EventGameOver, events[0].Kind)
	assert.Equal(t, "Game Over, restarting..", s.Text().Value)
	assert.Equal(t, 1, s.State().Restarts)

	update(s, 1)
	assert.Empty(t, s.Events(), "the manual request does not linger")
	assert.Equal(t, 1, s.State().Restarts)
}

func TestArenaWallsKeepThePlayerIn(t *testing.T) {
	s := newScene(t, noSpawns)
	cfg := s.Config()
	half := cfg.Player.Width / 2
	const slop = 0.15

	s.SetInput(scene.Input{MoveX: -1})
	update(s, 120)
	x := s.PlayerPosition()[0]
	assert.GreaterOrEqual(t, x, half-slop, "left wall")
	assert.Less(t, x, half+slop)

	s.SetInput(scene.Input{MoveX: 1})
	update(s, 400)
	x = s.PlayerPosition()[0]
	assert.LessOrEqual(t, x, cfg.ArenaWidth()-half+slop, "right wall")
	assert.Greater(t, x, cfg.ArenaWidth()-half-slop)
}

func TestVictory(t *testing.T) {
	t.Run("interact key in range", func(t *testing.T) {
		s := newScene(t, nil)
		s.TeleportPlayer(mgl64.Vec2{8, 5})
		update(s, 1)

		s.SetInput(scene.Input{Interact: true})
		update(s, 1)

		state := s.State()
		assert.Equal(t, scene.PhaseWon, state.Phase)
		assert.Equal(t, 1, state.Wins)
		assert.Equal(t, "Congratulations, you win!", s.Text().Value)
		assert.Equal(t, 1, countEvents(s.Events(), scene.EventVictory))

		s.SetInput(scene.Input{Interact: true})
		update(s, 1)
		assert.Equal(t, 1, s.State().Wins, "victory fires once")
		assert.Zero(t, countEvents(s.Events(), scene.EventVictory))

		spawned := state.Spawned
		update(s, 100)
		assert.Equal(t, spawned, s.State().Spawned, "no platforms drop after a win")
		assert.Equal(t, "Congratulations, you win!", s.Text().Value, "hints do not replace the victory text")
	})

	t.Run("out of range", func(t *testing.T) {
		s := newScene(t, noSpawns)
		update(s, 1)

		s.SetInput(scene.Input{Interact: true})
		update(s, 1)

		assert.Equal(t, scene.PhasePlaying, s.State().Phase)
		assert.False(t, s.State().InRange)
	})

	t.Run("pointer press on the trophy", func(t *testing.T) {
		s := newScene(t, noSpawns)
		s.TeleportPlayer(mgl64.Vec2{7, 5})
		update(s, 1)

		s.SetInput(scene.Input{Pointer: mgl64.Vec2{0, 0}, PointerActive: true, PointerPressed: true})
		update(s, 1)
		assert.Equal(t, scene.PhasePlaying, s.State().Phase, "pressing elsewhere does nothing")

		s.SetInput(scene.Input{Pointer: s.TrophyPosition(), PointerActive: true})
		update(s, 1)
		assert.True(t, s.State().Hovering)
		assert.Equal(t, scene.PhasePlaying, s.State().Phase)

		s.SetInput(scene.Input{Pointer: s.TrophyPosition(), PointerActive: true, PointerPressed: true})
		update(s, 1)
		assert.Equal(t, scene.PhaseWon, s.State().Phase)
	})
}

func TestManualRestart(t *testing.T) {
	s := newScene(t, nil)
	update(s, 60)
	require.NotEmpty(t, s.Platforms())

	s.TeleportPlayer(mgl64.Vec2{8, 5})
	update(s, 1)
	s.SetInput(scene.Input{Interact: true})
	update(s, 1)
	require.Equal(t, scene.PhaseWon, s.State().Phase)
	s.Events()

	s.SetInput(scene.Input{Restart: true})
	update(s, 1)

	state := s.State()
	assert.Equal(t, scene.PhasePlaying, state.Phase)
	assert.Equal(t, "Restarting..", s.Text().Value)
	assert.Empty(t, s.Platforms())
	assert.Equal(t, 1, countEvents(s.Events(), scene.EventRestart))

	update(s, 25)
	assert.Len(t, s.Platforms(), 1, "spawning resumes")
}

func TestPlatformsStayPaired(t *testing.T) {
	cfg := config.Default()
	cfg.Difficulty.PlatformRate = 10
	s, err := scene.New(cfg, scene.WithSeed(3))
	require.NoError(t, err)

	pilot := &scene.Autopilot{}
	for i := range 3000 {
		s.SetInput(pilot.Next(s))
		s.Update(frame)
		s.Events()

		if i%50 == 0 {
			platforms := s.Platforms()
			require.Len(t, platforms, s.World().Count(physics.KindPlatform))
			for _, p := range platforms {
				_, ok := s.World().Position(p.Body)
				require.True(t, ok)
			}
		}
	}

	state := s.State()
	assert.GreaterOrEqual(t, state.Spawned, state.Attempt.Platforms)
}
