package runlog

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/plus3/staffclimb/scene"
)

// Saver stores a finished run. *Store is a Saver.
type Saver interface {
	Save(r Run) (uuid.UUID, error)
}

// Recorder turns scene events into runs. An attempt ends lost on a game
// over, won on victory, and abandoned on a manual restart or when the
// session closes mid-attempt.
type Recorder struct {
	store       Saver
	preset      string
	fingerprint string
	log         *log.Logger
	now         func() time.Time

	started  time.Time
	attempts int
	won      bool
}

// NewRecorder starts recording the first attempt now.
func NewRecorder(store Saver, preset, fingerprint string, logger *log.Logger) *Recorder {
	r := &Recorder{
		store:       store,
		preset:      preset,
		fingerprint: fingerprint,
		log:         logger,
		now:         time.Now,
	}
	r.started = r.now()
	return r
}

// Handle saves the runs that events complete.
func (r *Recorder) Handle(events []scene.Event) error {
	var errs []error
	for _, e := range events {
		switch e.Kind {
		case scene.EventGameOver:
			errs = append(errs, r.save(OutcomeLost, e.Attempt))
			r.next()
		case scene.EventVictory:
			errs = append(errs, r.save(OutcomeWon, e.Attempt))
			r.won = true
		case scene.EventRestart:
			if !r.won {
				errs = append(errs, r.save(OutcomeAbandoned, e.Attempt))
			}
			r.next()
		}
	}
	return errors.Join(errs...)
}

// Finish records the attempt in progress, if any, as abandoned.
func (r *Recorder) Finish(attempt scene.Attempt) error {
	if r.won || attempt.Ticks == 0 {
		return nil
	}
	return r.save(OutcomeAbandoned, attempt)
}

func (r *Recorder) next() {
	r.attempts++
	r.won = false
	r.started = r.now()
}

func (r *Recorder) save(outcome Outcome, attempt scene.Attempt) error {
	id, err := r.store.Save(Run{
		StartedAt:   r.started,
		Outcome:     outcome,
		Ticks:       attempt.Ticks,
		Platforms:   attempt.Platforms,
		Jumps:       attempt.Jumps,
		Restarts:    r.attempts,
		Preset:      r.preset,
		Fingerprint: r.fingerprint,
	})
	if err != nil {
		return err
	}
	r.log.Debug("run recorded", "id", id, "outcome", outcome, "ticks", attempt.Ticks)
	return nil
}
