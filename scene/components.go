package scene

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/plus3/staffclimb/physics"
)

// Transform places an entity in the world. Position is the centre of the
// entity; Scale multiplies the unit size of its Shape.
type Transform struct {
	Position mgl64.Vec2
	Scale    mgl64.Vec2
}

type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeStaff
	ShapeAvatar
	ShapePlane
)

// Shape is the visual shape of an entity, in meters before scaling.
type Shape struct {
	Kind ShapeKind
	Size mgl64.Vec2
}

// Material is the surface look shared by all platforms.
type Material struct {
	Albedo    color.RGBA
	Metallic  float64
	Roughness float64
}

// Platform pairs a visual platform with its body in the physics world.
type Platform struct {
	Body      physics.BodyID
	SpawnTick int
}

// Trophy is the goal. It can be interacted with from InteractDistance away.
type Trophy struct {
	InteractDistance float64
	HoverText        string
}

// Player is the avatar controlled by Input.
type Player struct {
	Body     physics.BodyID
	Grounded bool
}

// Ground marks the static ground plane.
type Ground struct{}

type Phase uint8

const (
	PhasePlaying Phase = iota
	PhaseWon
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	default:
		return "unknown"
	}
}

// RestartReason says why the platforms were cleared.
type RestartReason uint8

const (
	restartNone RestartReason = iota
	RestartGameOver
	RestartManual
)

// Attempt counts what happened since the last restart.
type Attempt struct {
	Ticks     int
	Platforms int
	Jumps     int
}

// State is the scene singleton.
type State struct {
	// Tick drives the message timeline and spawn rate. It restarts at 0.
	Tick     int
	Phase    Phase
	Attempt  Attempt
	Restarts int
	Wins     int
	Spawned  int
	Hovering bool
	InRange  bool

	pending RestartReason
	events  []Event
}

func (s *State) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *State) requestRestart(reason RestartReason) {
	if s.pending == restartNone || reason == RestartGameOver {
		s.pending = reason
	}
}

// Text is the on-screen status line.
type Text struct {
	Value    string
	HAlign   string
	VAlign   string
	FontSize float64
}

// Input is the player's intent for the next update. The front end or the
// autopilot writes it; the scene consumes it.
type Input struct {
	// MoveX is the horizontal direction in [-1, 1].
	MoveX    float64
	Jump     bool
	Interact bool
	Restart  bool
	// Pointer is the cursor position in world coordinates.
	Pointer        mgl64.Vec2
	PointerActive  bool
	PointerPressed bool
}

// Physics exposes the physics world to systems.
type Physics struct {
	World *physics.World
}

type EventKind uint8

const (
	EventSpawn EventKind = iota + 1
	EventGameOver
	EventVictory
	EventRestart
)

func (k EventKind) String() string {
	switch k {
	case EventSpawn:
		return "spawn"
	case EventGameOver:
		return "game_over"
	case EventVictory:
		return "victory"
	case EventRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Event is something the front end may want to react to.
type Event struct {
	Kind     EventKind
	Tick     int
	Attempt  Attempt
	Position mgl64.Vec2
}
