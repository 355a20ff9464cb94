// Package scene implements the staffclimb scene on top of the ooftn ECS.
//
// A player must reach a staff placed above a tower of falling platforms.
// Platforms drop at a fixed update rate onto random grid columns and pile up
// under a physics simulation; a falling platform that lands on the player
// clears the tower and starts over. The host calls Update once per frame.
package scene

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/plus3/ooftn/ecs"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/physics"
)

type options struct {
	logger   *log.Logger
	registry *ecs.ComponentRegistry
	seed     uint64
	seeded   bool
}

// Option configures a Scene.
type Option func(*options)

// WithLogger sets the logger. Scenes log nothing by default.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRegistry builds the scene storage on registry, so that front ends can
// attach their own components and singletons to the same storage.
func WithRegistry(registry *ecs.ComponentRegistry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithSeed makes platform placement reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// Scene owns the ECS storage, the systems and the physics world of one game.
// It is not safe for concurrent use.
type Scene struct {
	cfg       config.Config
	log       *log.Logger
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	world     *physics.World

	state *ecs.Singleton[State]
	text  *ecs.Singleton[Text]
	input *ecs.Singleton[Input]

	player     ecs.EntityId
	playerBody physics.BodyID
	trophy     ecs.EntityId

	platforms *ecs.View[struct {
		ecs.EntityId
		*Platform
		*Transform
	}]
}

// RegisterComponents adds the scene components to registry.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Shape](registry)
	ecs.RegisterComponent[Material](registry)
	ecs.RegisterComponent[Platform](registry)
	ecs.RegisterComponent[Trophy](registry)
	ecs.RegisterComponent[Player](registry)
	ecs.RegisterComponent[Ground](registry)
	ecs.RegisterComponent[State](registry)
	ecs.RegisterComponent[Text](registry)
	ecs.RegisterComponent[Input](registry)
	ecs.RegisterComponent[Physics](registry)
}

// New sets up the scene: trophy, ground, player, status text and the
// physics world. The configuration is copied.
func New(cfg config.Config, opts ...Option) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
	}

	s := &Scene{
		cfg: cfg,
		log: o.logger,
	}

	if o.registry == nil {
		o.registry = ecs.NewComponentRegistry()
	}
	RegisterComponents(o.registry)
	s.storage = ecs.NewStorage(o.registry)
	s.world = physics.NewWorld(physics.OptionsFromConfig(&s.cfg))

	s.state = ecs.NewSingleton[State](s.storage, State{Phase: PhasePlaying})
	s.text = ecs.NewSingleton[Text](s.storage, Text{
		HAlign:   cfg.UI.HAlign,
		VAlign:   cfg.UI.VAlign,
		FontSize: cfg.UI.FontSize,
	})
	s.input = ecs.NewSingleton[Input](s.storage, Input{})
	ecs.NewSingleton[Physics](s.storage, Physics{World: s.world})

	s.trophy = spawnTrophy(s.storage, &s.cfg)
	spawnGround(s.storage, &s.cfg)
	s.player = spawnPlayer(s.storage, s.world, &s.cfg)
	if p := ecs.ReadComponent[Player](s.storage, s.player); p != nil {
		s.playerBody = p.Body
	}

	s.platforms = ecs.NewView[struct {
		ecs.EntityId
		*Platform
		*Transform
	}](s.storage)

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))

	s.scheduler = ecs.NewScheduler(s.storage)
	s.scheduler.Register(&ControlSystem{speed: cfg.Player.Speed})
	s.scheduler.Register(&InteractionSystem{victoryText: cfg.Text.Victory, log: s.log})
	s.scheduler.Register(&TimelineSystem{messages: cfg.Messages})
	s.scheduler.Register(&PhysicsSystem{log: s.log})
	s.scheduler.Register(&RestartSystem{text: cfg.Text, log: s.log})
	s.scheduler.Register(&TransformSyncSystem{})
	s.scheduler.Register(&SpawnSystem{cfg: &s.cfg, rng: rng, log: s.log})

	s.log.Debug("scene ready", "seed", o.seed, "preset", cfg.Difficulty.Preset, "arena", cfg.ArenaWidth())
	return s, nil
}

// Update runs one frame: input, timeline, physics, restart, transform sync
// and spawning, in that order.
func (s *Scene) Update(dt float64) {
	s.scheduler.Once(dt)
	// Input is edge triggered; movement persists until replaced.
	in := s.input.Get()
	in.Jump = false
	in.Interact = false
	in.Restart = false
	in.PointerPressed = false
}

// SetInput replaces the input consumed by the next Update.
func (s *Scene) SetInput(in Input) {
	*s.input.Get() = in
}

// Restart clears the tower on the next Update, as if the player asked for it.
func (s *Scene) Restart() {
	s.state.Get().requestRestart(RestartManual)
}

// SpawnPlatform drops a platform at (x, y) outside the regular spawn cadence.
func (s *Scene) SpawnPlatform(x, y float64) ecs.EntityId {
	return spawnPlatform(s.storage, s.world, &s.cfg, mgl64.Vec2{x, y}, s.state.Get())
}

// State returns a copy of the scene state.
func (s *Scene) State() State {
	st := *s.state.Get()
	st.events = nil
	return st
}

// Text returns the status text.
func (s *Scene) Text() Text {
	return *s.text.Get()
}

// Events returns the events emitted since the last call and forgets them.
func (s *Scene) Events() []Event {
	state := s.state.Get()
	events := state.events
	state.events = nil
	return events
}

// PlatformView is a read-only snapshot of a platform.
type PlatformView struct {
	Entity    ecs.EntityId
	Body      physics.BodyID
	Position  mgl64.Vec2
	SpawnTick int
}

// Platforms returns the platforms currently in the scene.
func (s *Scene) Platforms() []PlatformView {
	var views []PlatformView
	for p := range s.platforms.Iter() {
		views = append(views, PlatformView{
			Entity:    p.EntityId,
			Body:      p.Platform.Body,
			Position:  p.Transform.Position,
			SpawnTick: p.Platform.SpawnTick,
		})
	}
	return views
}

// PlayerPosition returns the centre of the avatar.
func (s *Scene) PlayerPosition() mgl64.Vec2 {
	pos, _ := s.world.Position(s.playerBody)
	return mgl64.Vec2{pos.X, pos.Y}
}

// TeleportPlayer moves the avatar, e.g. to set up a test or a checkpoint.
func (s *Scene) TeleportPlayer(pos mgl64.Vec2) {
	s.world.Teleport(s.playerBody, cp.Vector{X: pos[0], Y: pos[1]})
}

// PlayerEntity returns the avatar entity.
func (s *Scene) PlayerEntity() ecs.EntityId {
	return s.player
}

// TrophyEntity returns the trophy entity.
func (s *Scene) TrophyEntity() ecs.EntityId {
	return s.trophy
}

// TrophyPosition returns the centre of the trophy.
func (s *Scene) TrophyPosition() mgl64.Vec2 {
	if t := ecs.ReadComponent[Transform](s.storage, s.trophy); t != nil {
		return t.Position
	}
	return mgl64.Vec2{}
}

// Storage exposes the ECS storage to renderers and debug tooling.
func (s *Scene) Storage() *ecs.Storage {
	return s.storage
}

// Scheduler exposes the update scheduler, for its statistics.
func (s *Scene) Scheduler() *ecs.Scheduler {
	return s.scheduler
}

// World exposes the physics world.
func (s *Scene) World() *physics.World {
	return s.world
}

// Config returns the configuration the scene was built with.
func (s *Scene) Config() *config.Config {
	return &s.cfg
}
