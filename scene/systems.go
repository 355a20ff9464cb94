package scene

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/ooftn/ecs"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/physics"
)

// ControlSystem applies the player's movement intent to the avatar body.
type ControlSystem struct {
	Input   ecs.Singleton[Input]
	State   ecs.Singleton[State]
	Physics ecs.Singleton[Physics]
	Players ecs.Query[struct{ *Player }]

	speed float64
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	state := s.State.Get()
	world := s.Physics.Get().World

	for player := range s.Players.Iter() {
		if world.Drive(player.Player.Body, clampMove(input.MoveX)*s.speed, input.Jump) {
			state.Attempt.Jumps++
		}
	}
}

func clampMove(x float64) float64 {
	return mgl64.Clamp(x, -1, 1)
}

// InteractionSystem resolves pointer hover, trophy interaction and manual
// restarts.
type InteractionSystem struct {
	Input    ecs.Singleton[Input]
	State    ecs.Singleton[State]
	Text     ecs.Singleton[Text]
	Players  ecs.Query[struct{ *Player; *Transform }]
	Trophies ecs.Query[struct {
		*Trophy
		*Transform
		*Shape
	}]

	victoryText string
	log         *log.Logger
}

func (s *InteractionSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	state := s.State.Get()

	if input.Restart {
		state.requestRestart(RestartManual)
	}

	var playerPos mgl64.Vec2
	for player := range s.Players.Iter() {
		playerPos = player.Transform.Position
	}

	state.Hovering = false
	state.InRange = false
	for trophy := range s.Trophies.Iter() {
		inRange := playerPos.Sub(trophy.Transform.Position).Len() <= trophy.Trophy.InteractDistance
		hovering := input.PointerActive && contains(trophy.Transform, trophy.Shape, input.Pointer, pickMargin)

		state.InRange = state.InRange || inRange
		state.Hovering = state.Hovering || (hovering && inRange)

		if state.Phase != PhasePlaying || !inRange {
			continue
		}
		if input.Interact || (input.PointerPressed && hovering) {
			s.victory(state)
		}
	}
}

func (s *InteractionSystem) victory(state *State) {
	state.Phase = PhaseWon
	state.Wins++
	s.Text.Get().Value = s.victoryText
	state.emit(Event{Kind: EventVictory, Tick: state.Tick, Attempt: state.Attempt})
	s.log.Info("trophy reached", "ticks", state.Attempt.Ticks, "platforms", state.Attempt.Platforms)
}

// pickMargin widens the trophy bounds for pointer picking.
const pickMargin = 0.3

func contains(t *Transform, shape *Shape, p mgl64.Vec2, margin float64) bool {
	half := mgl64.Vec2{shape.Size[0] * t.Scale[0] / 2, shape.Size[1] * t.Scale[1] / 2}
	d := p.Sub(t.Position)
	return d[0] >= -half[0]-margin && d[0] <= half[0]+margin &&
		d[1] >= -half[1]-margin && d[1] <= half[1]+margin
}

// TimelineSystem advances the update counter and shows the timed hints.
type TimelineSystem struct {
	State ecs.Singleton[State]
	Text  ecs.Singleton[Text]

	messages []config.Message
}

func (s *TimelineSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	state.Tick++

	if state.Phase != PhasePlaying {
		return
	}
	state.Attempt.Ticks++

	for _, msg := range s.messages {
		if msg.Tick == state.Tick {
			s.Text.Get().Value = msg.Text
		}
	}
}

// PhysicsSystem steps the physics world and turns strikes into a restart.
type PhysicsSystem struct {
	State   ecs.Singleton[State]
	Physics ecs.Singleton[Physics]

	log *log.Logger
}

func (s *PhysicsSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	world := s.Physics.Get().World

	world.Step(frame.DeltaTime)

	strikes := world.Strikes()
	if len(strikes) == 0 || state.Phase != PhasePlaying {
		return
	}

	s.log.Debug("platform hit the player", "platform", strikes[0].Platform, "speed", strikes[0].Speed)
	state.requestRestart(RestartGameOver)
}

// RestartSystem removes every platform and its body when a restart was
// requested during this update.
type RestartSystem struct {
	State     ecs.Singleton[State]
	Text      ecs.Singleton[Text]
	Physics   ecs.Singleton[Physics]
	Platforms ecs.Query[struct {
		ecs.EntityId
		*Platform
	}]

	text config.Text
	log  *log.Logger
}

func (s *RestartSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	reason := state.pending
	if reason == restartNone {
		return
	}
	state.pending = restartNone

	world := s.Physics.Get().World
	removed := 0
	for platform := range s.Platforms.Iter() {
		world.Remove(platform.Platform.Body)
		frame.Commands.Delete(platform.EntityId)
		removed++
	}
	// Bodies whose entities were spawned after the query was built.
	world.RemoveKind(physics.KindPlatform)

	attempt := state.Attempt
	kind := EventRestart
	if reason == RestartGameOver {
		kind = EventGameOver
		s.Text.Get().Value = s.text.GameOver
	} else {
		s.Text.Get().Value = s.text.Restart
	}
	state.emit(Event{Kind: kind, Tick: state.Tick, Attempt: attempt})

	state.Tick = 0
	state.Restarts++
	state.Phase = PhasePlaying
	state.Attempt = Attempt{}

	s.log.Info("restarting", "reason", kind, "platforms", removed, "ticks", attempt.Ticks)
}

// TransformSyncSystem copies body positions onto visual transforms.
type TransformSyncSystem struct {
	Physics   ecs.Singleton[Physics]
	Platforms ecs.Query[struct {
		*Platform
		*Transform
	}]
	Players ecs.Query[struct {
		*Player
		*Transform
	}]
}

func (s *TransformSyncSystem) Execute(frame *ecs.UpdateFrame) {
	world := s.Physics.Get().World

	for platform := range s.Platforms.Iter() {
		if pos, ok := world.Position(platform.Platform.Body); ok {
			platform.Transform.Position = mgl64.Vec2{pos.X, pos.Y}
		}
	}

	for player := range s.Players.Iter() {
		if pos, ok := world.Position(player.Player.Body); ok {
			player.Transform.Position = mgl64.Vec2{pos.X, pos.Y}
		}
		player.Player.Grounded = world.Grounded(player.Player.Body)
	}
}

// SpawnSystem drops a new platform every PlatformRate updates.
type SpawnSystem struct {
	State   ecs.Singleton[State]
	Physics ecs.Singleton[Physics]

	cfg *config.Config
	rng *rand.Rand
	log *log.Logger
}

func (s *SpawnSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	if state.Phase != PhasePlaying || state.Tick == 0 || state.Tick%s.cfg.Difficulty.PlatformRate != 0 {
		return
	}

	pos := SpawnPosition(s.rng, s.cfg.Grid, s.cfg.SpawnHeight())
	spawnPlatform(frame.Storage, s.Physics.Get().World, s.cfg, pos, state)
	s.log.Debug("platform spawned", "x", pos[0], "y", pos[1], "tick", state.Tick)
}
