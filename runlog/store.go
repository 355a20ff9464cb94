// Package runlog keeps a history of attempts in SQLite.
// It uses the pure-Go modernc.org/sqlite driver.
package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no run matches a query.
var ErrNotFound = errors.New("runlog: not found")

// Outcome is how an attempt ended.
type Outcome string

const (
	OutcomeLost      Outcome = "lost"
	OutcomeWon       Outcome = "won"
	OutcomeAbandoned Outcome = "abandoned"
)

// Run is one attempt.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Outcome   Outcome
	Ticks     int
	Platforms int
	Jumps     int
	// Restarts is how many attempts preceded this one in the session.
	Restarts    int
	Preset      string
	Fingerprint string
}

// Duration is the attempt length at the fixed update rate.
func (r Run) Duration(step float64) time.Duration {
	return time.Duration(float64(r.Ticks) * step * float64(time.Second))
}

// Store is a SQLite run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent directories
// and the schema as needed. A leading ~ is expanded to the home directory.
func Open(path string) (*Store, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("runlog: cannot expand home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runlog: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: cannot connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("runlog: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			platforms INTEGER NOT NULL,
			jumps INTEGER NOT NULL DEFAULT 0,
			restarts INTEGER NOT NULL DEFAULT 0,
			preset TEXT NOT NULL,
			fingerprint TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(fingerprint, outcome, ticks);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records r, assigning an ID when it has none. It returns the ID.
func (s *Store) Save(r Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, outcome, ticks, platforms, jumps, restarts, preset, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.StartedAt.UTC().Format(timeLayout), string(r.Outcome),
		r.Ticks, r.Platforms, r.Jumps, r.Restarts, r.Preset, r.Fingerprint,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("runlog: cannot save run: %w", err)
	}
	return r.ID, nil
}

// timeLayout is fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const columns = `id, started_at, outcome, ticks, platforms, jumps, restarts, preset, fingerprint`

// Recent returns the latest runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+columns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runlog: row iteration error: %w", err)
	}
	return runs, nil
}

// Best returns the fastest won run for a config fingerprint.
func (s *Store) Best(fingerprint string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT `+columns+` FROM runs
		 WHERE fingerprint = ? AND outcome = ?
		 ORDER BY ticks ASC, started_at ASC
		 LIMIT 1`,
		fingerprint, string(OutcomeWon),
	)
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return r, err
}

// Summary counts runs per outcome for a fingerprint.
type Summary struct {
	Runs      int
	Won       int
	Lost      int
	Abandoned int
}

// Summarize counts the runs recorded for a fingerprint.
func (s *Store) Summarize(fingerprint string) (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(outcome = 'won'), 0),
		        COALESCE(SUM(outcome = 'lost'), 0),
		        COALESCE(SUM(outcome = 'abandoned'), 0)
		 FROM runs WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&sum.Runs, &sum.Won, &sum.Lost, &sum.Abandoned)
	if err != nil {
		return Summary{}, fmt.Errorf("runlog: cannot summarize runs: %w", err)
	}
	return sum, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Run, error) {
	var (
		r         Run
		id        string
		startedAt string
		outcome   string
	)
	err := row.Scan(&id, &startedAt, &outcome, &r.Ticks, &r.Platforms, &r.Jumps, &r.Restarts, &r.Preset, &r.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("runlog: cannot scan row: %w", err)
	}

	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("runlog: bad run id %q: %w", id, err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Run{}, fmt.Errorf("runlog: bad start time %q: %w", startedAt, err)
	}
	r.Outcome = Outcome(outcome)
	return r, nil
}
