package scene

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/plus3/ooftn/ecs"

	"github.com/plus3/staffclimb/config"
	"github.com/plus3/staffclimb/physics"
)

// SpawnPosition picks a uniformly random grid column and returns the centre
// of that column at the given height.
func SpawnPosition(rng *rand.Rand, grid config.Grid, height float64) mgl64.Vec2 {
	col := rng.IntN(grid.Columns)
	return mgl64.Vec2{float64(col)*grid.Cell + grid.Cell/2, height}
}

func platformMaterial(cfg *config.Config) Material {
	return Material{
		Albedo:    cfg.Platform.Albedo.RGBA(),
		Metallic:  cfg.Platform.Metallic,
		Roughness: cfg.Platform.Roughness,
	}
}

// spawnPlatform creates a platform entity and its body at pos. The entity
// is a unit box scaled to the platform footprint.
func spawnPlatform(storage *ecs.Storage, world *physics.World, cfg *config.Config, pos mgl64.Vec2, state *State) ecs.EntityId {
	body := world.AddPlatform(cp.Vector{X: pos[0], Y: pos[1]}, cfg.Platform.Width, cfg.Platform.Height, cfg.Platform.Mass)

	id := storage.Spawn(
		Transform{
			Position: pos,
			Scale:    mgl64.Vec2{cfg.Platform.Width, cfg.Platform.Height},
		},
		Shape{Kind: ShapeBox, Size: mgl64.Vec2{1, 1}},
		platformMaterial(cfg),
		Platform{Body: body, SpawnTick: state.Tick},
	)

	state.Spawned++
	state.Attempt.Platforms++
	state.emit(Event{Kind: EventSpawn, Tick: state.Tick, Attempt: state.Attempt, Position: pos})
	return id
}

func spawnTrophy(storage *ecs.Storage, cfg *config.Config) ecs.EntityId {
	size := mgl64.Vec2{cfg.Trophy.Width, cfg.Trophy.Height}
	return storage.Spawn(
		Transform{
			// The staff stands on trophy_height.
			Position: mgl64.Vec2{cfg.Trophy.X, cfg.Difficulty.TrophyHeight + size[1]/2},
			Scale:    mgl64.Vec2{1, 1},
		},
		Shape{Kind: ShapeStaff, Size: size},
		Trophy{
			InteractDistance: cfg.Trophy.InteractDistance,
			HoverText:        cfg.Trophy.HoverText,
		},
	)
}

func spawnGround(storage *ecs.Storage, cfg *config.Config) ecs.EntityId {
	width := cfg.ArenaWidth()
	return storage.Spawn(
		Transform{
			Position: mgl64.Vec2{width / 2, 0},
			Scale:    mgl64.Vec2{1, 1},
		},
		Shape{Kind: ShapePlane, Size: mgl64.Vec2{width, 0}},
		Ground{},
	)
}

func spawnPlayer(storage *ecs.Storage, world *physics.World, cfg *config.Config) ecs.EntityId {
	pos := mgl64.Vec2{cfg.Player.SpawnX, cfg.Player.Height / 2}
	body := world.AddPlayer(cp.Vector{X: pos[0], Y: pos[1]}, physics.PlayerSpec{
		Width:     cfg.Player.Width,
		Height:    cfg.Player.Height,
		Mass:      cfg.Player.Mass,
		JumpSpeed: cfg.Player.JumpSpeed,
		Gravity:   cfg.Player.Gravity,
	})

	return storage.Spawn(
		Transform{Position: pos, Scale: mgl64.Vec2{1, 1}},
		Shape{Kind: ShapeAvatar, Size: mgl64.Vec2{cfg.Player.Width, cfg.Player.Height}},
		Player{Body: body},
	)
}
