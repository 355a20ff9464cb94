// Package physics wraps a Chipmunk2D space for the staffclimb scene.
//
// The world owns every rigid body in the scene and hands out BodyID handles,
// so the ECS side never holds a *cp.Body directly. It advances the space with
// a fixed time step accumulator and records contacts where a falling platform
// lands on the player.
package physics

import (
	"cmp"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"

	"github.com/plus3/staffclimb/config"
)

// BodyID addresses a body in a World. The zero value is never issued.
type BodyID uint32

// Kind tells platforms and the player apart.
type Kind uint8

const (
	KindPlatform Kind = iota + 1
	KindPlayer
)

const (
	collisionGround cp.CollisionType = iota + 1
	collisionPlatform
	collisionPlayer
)

// groundedNormal is the minimum upward component of a contact normal that
// counts as standing on something.
const groundedNormal = 0.5

// Options configures a World.
type Options struct {
	// Gravity is the downward acceleration applied to platforms, in m/s².
	Gravity           float64
	FixedTimeStep     float64
	MaxSubSteps       int
	Iterations        int
	ArenaWidth        float64
	WallHeight        float64
	GroundFriction    float64
	GroundRestitution float64
	StrikeSpeed       float64
}

// OptionsFromConfig derives world options from the scene configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Gravity:           cfg.WorldGravity(),
		FixedTimeStep:     cfg.Physics.FixedTimeStep,
		MaxSubSteps:       cfg.Physics.MaxSubSteps,
		Iterations:        cfg.Physics.Iterations,
		ArenaWidth:        cfg.ArenaWidth(),
		WallHeight:        cfg.SpawnHeight() * 4,
		GroundFriction:    cfg.Physics.GroundFriction,
		GroundRestitution: cfg.Physics.GroundRestitution,
		StrikeSpeed:       cfg.Physics.StrikeSpeed,
	}
}

// PlayerSpec describes the avatar body.
type PlayerSpec struct {
	Width     float64
	Height    float64
	Mass      float64
	JumpSpeed float64
	// Gravity overrides the world gravity for the player body.
	Gravity float64
}

// Strike is a contact between a falling platform and the player.
type Strike struct {
	Platform BodyID
	Player   BodyID
	Speed    float64
}

type entry struct {
	kind      Kind
	body      *cp.Body
	shape     *cp.Shape
	jumpSpeed float64
}

// World is a rigid-body world. It is not safe for concurrent use.
type World struct {
	space  *cp.Space
	opts   Options
	bodies *intmap.Map[BodyID, *entry]
	nextID BodyID

	accumulator float64
	elapsed     float64
	substeps    uint64
	strikes     []Strike
}

// NewWorld creates a world with a static ground plane at height 0 and walls
// at both edges of the arena.
func NewWorld(opts Options) *World {
	w := &World{
		space:  cp.NewSpace(),
		opts:   opts,
		bodies: intmap.New[BodyID, *entry](64),
	}

	w.space.SetGravity(cp.Vector{X: 0, Y: -opts.Gravity})
	if opts.Iterations > 0 {
		w.space.Iterations = uint(opts.Iterations)
	}

	static := w.space.StaticBody
	ground := cp.NewSegment(static, cp.Vector{X: -opts.ArenaWidth, Y: 0}, cp.Vector{X: 2 * opts.ArenaWidth, Y: 0}, 0)
	ground.SetFriction(opts.GroundFriction)
	ground.SetElasticity(opts.GroundRestitution)
	ground.SetCollisionType(collisionGround)
	w.space.AddShape(ground)

	for _, x := range []float64{0, opts.ArenaWidth} {
		wall := cp.NewSegment(static, cp.Vector{X: x, Y: 0}, cp.Vector{X: x, Y: opts.WallHeight}, 0)
		wall.SetFriction(0)
		wall.SetElasticity(0)
		wall.SetCollisionType(collisionGround)
		w.space.AddShape(wall)
	}

	handler := w.space.NewCollisionHandler(collisionPlatform, collisionPlayer)
	handler.BeginFunc = w.platformHitsPlayer

	return w
}

func (w *World) platformHitsPlayer(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	platform, player := arb.Bodies()

	falling := -platform.Velocity().Y
	if falling > w.opts.StrikeSpeed && platform.Position().Y > player.Position().Y {
		w.strikes = append(w.strikes, Strike{
			Platform: platform.UserData.(BodyID),
			Player:   player.UserData.(BodyID),
			Speed:    falling,
		})
	}
	return true
}

func (w *World) add(kind Kind, body *cp.Body, shape *cp.Shape) (BodyID, *entry) {
	w.nextID++
	id := w.nextID

	body.UserData = id
	shape.UserData = id
	w.space.AddBody(body)
	w.space.AddShape(shape)

	e := &entry{kind: kind, body: body, shape: shape}
	w.bodies.Put(id, e)
	return id, e
}

// AddPlatform adds a dynamic box centred on pos. Platforms do not rotate, so
// the visual transform only needs the position.
func (w *World) AddPlatform(pos cp.Vector, width, height, mass float64) BodyID {
	body := cp.NewBody(mass, cp.INFINITY)
	body.SetPosition(pos)

	shape := cp.NewBox(body, width, height, 0)
	// Contact friction is the product of both shapes, so a platform resting
	// on the ground gets exactly the ground friction.
	shape.SetFriction(1)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionPlatform)

	id, _ := w.add(KindPlatform, body, shape)
	return id
}

// AddPlayer adds the avatar body centred on pos.
func (w *World) AddPlayer(pos cp.Vector, spec PlayerSpec) BodyID {
	body := cp.NewBody(spec.Mass, cp.INFINITY)
	body.SetPosition(pos)

	gravity := cp.Vector{X: 0, Y: -spec.Gravity}
	body.SetVelocityUpdateFunc(func(body *cp.Body, _ cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
	})

	shape := cp.NewBox(body, spec.Width, spec.Height, 0)
	shape.SetFriction(0.7)
	shape.SetElasticity(0)
	shape.SetCollisionType(collisionPlayer)

	id, e := w.add(KindPlayer, body, shape)
	e.jumpSpeed = spec.JumpSpeed
	return id
}

// Remove takes a body out of the world. It reports whether the body existed.
func (w *World) Remove(id BodyID) bool {
	e, ok := w.bodies.Get(id)
	if !ok {
		return false
	}

	w.space.RemoveShape(e.shape)
	w.space.RemoveBody(e.body)
	w.bodies.Del(id)
	return true
}

// RemoveKind removes every body of the given kind and returns how many were removed.
func (w *World) RemoveKind(kind Kind) int {
	var ids []BodyID
	w.bodies.ForEach(func(id BodyID, e *entry) bool {
		if e.kind == kind {
			ids = append(ids, id)
		}
		return true
	})

	for _, id := range ids {
		w.Remove(id)
	}
	return len(ids)
}

// Position returns the centre of a body.
func (w *World) Position(id BodyID) (cp.Vector, bool) {
	e, ok := w.bodies.Get(id)
	if !ok {
		return cp.Vector{}, false
	}
	return e.body.Position(), true
}

// Velocity returns the linear velocity of a body.
func (w *World) Velocity(id BodyID) (cp.Vector, bool) {
	e, ok := w.bodies.Get(id)
	if !ok {
		return cp.Vector{}, false
	}
	return e.body.Velocity(), true
}

// Teleport moves a body and clears its velocity.
func (w *World) Teleport(id BodyID, pos cp.Vector) bool {
	e, ok := w.bodies.Get(id)
	if !ok {
		return false
	}
	e.body.SetPosition(pos)
	e.body.SetVelocity(0, 0)
	return true
}

// Grounded reports whether the body rests on the ground or another body.
func (w *World) Grounded(id BodyID) bool {
	e, ok := w.bodies.Get(id)
	if !ok {
		return false
	}

	grounded := false
	e.body.EachArbiter(func(arb *cp.Arbiter) {
		if arb.Normal().Neg().Y > groundedNormal {
			grounded = true
		}
	})
	return grounded
}

// Drive sets the horizontal speed of the player and starts a jump when asked
// to and the player is grounded. It reports whether a jump started.
func (w *World) Drive(id BodyID, vx float64, jump bool) bool {
	e, ok := w.bodies.Get(id)
	if !ok || e.kind != KindPlayer {
		return false
	}

	v := e.body.Velocity()
	jumped := jump && w.Grounded(id)
	if jumped {
		v.Y = e.jumpSpeed
	}
	e.body.SetVelocity(vx, v.Y)
	return jumped
}

// Step advances the simulation by dt seconds in fixed increments. At most
// MaxSubSteps increments run per call; any backlog beyond that is dropped.
// It returns the number of increments taken.
func (w *World) Step(dt float64) int {
	if dt <= 0 {
		return 0
	}

	fixed := w.opts.FixedTimeStep
	w.accumulator += dt
	w.elapsed += dt

	n := 0
	for w.accumulator >= fixed && n < w.opts.MaxSubSteps {
		w.space.Step(fixed)
		w.accumulator -= fixed
		n++
	}
	w.accumulator = math.Mod(w.accumulator, fixed)
	w.substeps += uint64(n)

	return n
}

// Strikes returns the strikes recorded since the last call and forgets them.
func (w *World) Strikes() []Strike {
	strikes := w.strikes
	w.strikes = nil
	return strikes
}

// Len returns the number of bodies in the world.
func (w *World) Len() int {
	return w.bodies.Len()
}

// Count returns the number of bodies of a kind.
func (w *World) Count(kind Kind) int {
	n := 0
	w.bodies.ForEach(func(_ BodyID, e *entry) bool {
		if e.kind == kind {
			n++
		}
		return true
	})
	return n
}

// BodyState is a snapshot of a body.
type BodyState struct {
	ID       BodyID
	Position cp.Vector
	Velocity cp.Vector
}

// Bodies returns a snapshot of every body of a kind, ordered by handle.
func (w *World) Bodies(kind Kind) []BodyState {
	var states []BodyState
	w.bodies.ForEach(func(id BodyID, e *entry) bool {
		if e.kind == kind {
			states = append(states, BodyState{ID: id, Position: e.body.Position(), Velocity: e.body.Velocity()})
		}
		return true
	})
	slices.SortFunc(states, func(a, b BodyState) int { return cmp.Compare(a.ID, b.ID) })
	return states
}

// Elapsed is the simulated wall time passed to Step so far.
func (w *World) Elapsed() float64 {
	return w.elapsed
}

// Substeps is the total number of fixed increments taken.
func (w *World) Substeps() uint64 {
	return w.substeps
}
