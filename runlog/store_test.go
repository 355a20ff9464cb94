package runlog

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/staffclimb/scene"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "runs.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveAndRecent(t *testing.T) {
	store := openStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, outcome := range []Outcome{OutcomeLost, OutcomeWon, OutcomeAbandoned} {
		id, err := store.Save(Run{
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			Outcome:     outcome,
			Ticks:       100 * (i + 1),
			Platforms:   i + 1,
			Jumps:       2 * i,
			Restarts:    i,
			Preset:      "normal",
			Fingerprint: "abc",
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)
		ids = append(ids, id)
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, ids[1], runs[1].ID)

	got := runs[1]
	assert.Equal(t, OutcomeWon, got.Outcome)
	assert.Equal(t, 200, got.Ticks)
	assert.Equal(t, 2, got.Platforms)
	assert.Equal(t, 2, got.Jumps)
	assert.Equal(t, 1, got.Restarts)
	assert.Equal(t, "normal", got.Preset)
	assert.True(t, got.StartedAt.Equal(base.Add(time.Minute)))
}

func TestSaveKeepsExplicitID(t *testing.T) {
	store := openStore(t)
	want := uuid.New()

	id, err := store.Save(Run{ID: want, StartedAt: time.Now(), Outcome: OutcomeLost})
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = store.Save(Run{ID: want, StartedAt: time.Now(), Outcome: OutcomeLost})
	assert.Error(t, err, "ids are unique")
}

func TestBest(t *testing.T) {
	store := openStore(t)

	_, err := store.Best("abc")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	for _, r := range []Run{
		{Outcome: OutcomeWon, Ticks: 900, Fingerprint: "abc"},
		{Outcome: OutcomeWon, Ticks: 600, Fingerprint: "abc"},
		{Outcome: OutcomeLost, Ticks: 50, Fingerprint: "abc"},
		{Outcome: OutcomeWon, Ticks: 10, Fingerprint: "other"},
	} {
		r.StartedAt = now
		_, err := store.Save(r)
		require.NoError(t, err)
	}

	best, err := store.Best("abc")
	require.NoError(t, err)
	assert.Equal(t, 600, best.Ticks)

	sum, err := store.Summarize("abc")
	require.NoError(t, err)
	assert.Equal(t, Summary{Runs: 3, Won: 2, Lost: 1}, sum)
}

func TestRunDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, Run{Ticks: 120}.Duration(1.0/60.0).Round(time.Millisecond))
}

func TestRecorder(t *testing.T) {
	store := openStore(t)
	rec := NewRecorder(store, "hard", "fp", log.New(io.Discard))
	clock := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rec.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	rec.started = rec.now()

	require.NoError(t, rec.Handle([]scene.Event{
		{Kind: scene.EventSpawn},
		{Kind: scene.EventGameOver, Attempt: scene.Attempt{Ticks: 300, Platforms: 12}},
	}))
	require.NoError(t, rec.Handle([]scene.Event{
		{Kind: scene.EventVictory, Attempt: scene.Attempt{Ticks: 800, Platforms: 32, Jumps: 9}},
	}))
	require.NoError(t, rec.Handle([]scene.Event{
		{Kind: scene.EventRestart, Attempt: scene.Attempt{Ticks: 900, Platforms: 32}},
	}))
	require.NoError(t, rec.Handle([]scene.Event{
		{Kind: scene.EventRestart, Attempt: scene.Attempt{Ticks: 40, Platforms: 1}},
	}))
	require.NoError(t, rec.Finish(scene.Attempt{Ticks: 70, Platforms: 2}))

	runs, err := store.Recent(10)
	require.NoError(t, err)

	var outcomes []Outcome
	var restarts []int
	for i := len(runs) - 1; i >= 0; i-- {
		outcomes = append(outcomes, runs[i].Outcome)
		restarts = append(restarts, runs[i].Restarts)
		assert.Equal(t, "hard", runs[i].Preset)
		assert.Equal(t, "fp", runs[i].Fingerprint)
	}
	assert.Equal(t, []Outcome{OutcomeLost, OutcomeWon, OutcomeAbandoned, OutcomeAbandoned}, outcomes,
		"a restart after a win is not an abandoned attempt")
	assert.Equal(t, []int{0, 1, 2, 3}, restarts)

	best, err := store.Best("fp")
	require.NoError(t, err)
	assert.Equal(t, 9, best.Jumps)
}

func TestRecorderFinishSkipsEmptyAttempt(t *testing.T) {
	store := openStore(t)
	rec := NewRecorder(store, "normal", "fp", log.New(io.Discard))

	require.NoError(t, rec.Finish(scene.Attempt{}))
	runs, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
