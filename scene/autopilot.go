package scene

import (
	"math"

	"github.com/plus3/staffclimb/physics"
)

// Autopilot is a simple input policy: stay out of columns with a falling
// platform, climb the settled stack closest to the trophy, and interact as
// soon as the trophy is in range. Headless runs and tests use it in place of
// a human.
type Autopilot struct {
	lastX float64
	stuck int
}

// Next computes the input for the coming update.
func (a *Autopilot) Next(s *Scene) Input {
	cfg := s.Config()
	state := s.State()
	player := s.PlayerPosition()
	trophy := s.TrophyPosition()

	if state.Phase != PhasePlaying {
		return Input{}
	}
	if player.Sub(trophy).Len() <= cfg.Trophy.InteractDistance {
		return Input{Interact: true}
	}

	cols := cfg.Grid.Columns
	cell := cfg.Grid.Cell
	column := func(x float64) int {
		return min(cols-1, max(0, int(x/cell)))
	}

	danger := make([]bool, cols)
	heights := make([]float64, cols)
	for _, body := range s.World().Bodies(physics.KindPlatform) {
		col := column(body.Position.X)
		if -body.Velocity.Y > cfg.Physics.StrikeSpeed {
			danger[col] = true
			continue
		}
		heights[col] = math.Max(heights[col], body.Position.Y+cfg.Platform.Height/2)
	}

	best, bestScore := -1, math.Inf(-1)
	for col := range cols {
		if danger[col] {
			continue
		}
		centre := float64(col)*cell + cell/2
		score := heights[col] - 0.5*math.Abs(centre-trophy[0])
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	if best < 0 {
		best = column(player[0])
	}

	in := Input{}
	dx := float64(best)*cell + cell/2 - player[0]
	if math.Abs(dx) > 0.2 {
		in.MoveX = math.Copysign(1, dx)
	}

	feet := player[1] - cfg.Player.Height/2
	ahead := column(player[0] + in.MoveX*cell/2)
	if in.MoveX != 0 && heights[ahead] > feet+0.1 {
		in.Jump = true
	}

	if in.MoveX != 0 && math.Abs(player[0]-a.lastX) < 1e-3 {
		a.stuck++
	} else {
		a.stuck = 0
	}
	if a.stuck > 10 {
		in.Jump = true
		a.stuck = 0
	}
	a.lastX = player[0]

	return in
}
