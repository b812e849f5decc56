package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/config"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/core/event"
	coresys "github.com/witchwood/sim/internal/core/system"
	"github.com/witchwood/sim/internal/data"
	"github.com/witchwood/sim/internal/physics"
	"github.com/witchwood/sim/internal/spawn"
	"github.com/witchwood/sim/internal/system"
)

// ErrNoPlayer is returned when construction does not end with exactly one
// player entity.
var ErrNoPlayer = errors.New("game: no player")

// Transition is what a frame asks of the screen above it.
type Transition uint8

const (
	Continue Transition = iota
	GameOver
)

func (t Transition) String() string {
	if t == GameOver {
		return "game_over"
	}
	return "continue"
}

// Game is one round in the forest: the scene, its systems and the frame
// runner. Single goroutine.
type Game struct {
	scene   *system.Scene
	runner  *coresys.Runner
	player  *system.PlayerSystem
	ai      *system.WitchAISystem
	look    *system.MouseLook
	camera  *system.Camera
	terrain spawn.Terrain
	mapInfo data.MapInfo
	log     *zap.Logger
	session string
	tick    time.Duration
	frame   int
}

// NewRNG hashes a textual seed into a PCG generator.
func NewRNG(seed string) *rand.Rand {
	h := xxhash.Sum64String(seed)
	return rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15))
}

// PhysicsConfig converts the [physics] section.
func PhysicsConfig(c config.PhysicsConfig) physics.Config {
	return physics.Config{
		Gravity:          mgl32.Vec3{0, c.Gravity, 0},
		Timestep:         c.Timestep,
		SolverIterations: c.SolverIterations,
		MaxCCDSubsteps:   c.MaxCCDSubsteps,
		CellSize:         c.CellSize,
	}
}

// WitchConfig converts the [ai] section.
func WitchConfig(c config.AIConfig) system.WitchConfig {
	return system.WitchConfig{
		ChaseSpeed:      c.ChaseSpeed,
		PatrolSpeed:     c.PatrolSpeed,
		CatchDistance:   c.CatchDistance,
		ArrivalDistance: c.ArrivalDistance,
		PatrolExtent:    c.PatrolExtent,
		PatrolCenter:    mgl32.Vec3{c.PatrolCenter[0], 0, c.PatrolCenter[1]},
	}
}

// New builds a round: terrain first, then the player, trees, balls and
// witches on distinct free tiles. scripts may be nil.
func New(cfg *config.Config, m *data.Map, kinds data.KindTable, scripts system.WitchScripts, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	session := uuid.NewString()
	log = log.With(zap.String("session", session))
	rng := NewRNG(cfg.Game.Seed)

	w := ecs.NewWorld()
	scene := &system.Scene{
		ECS:     w,
		Stores:  component.NewStores(w),
		Physics: physics.NewWorld(PhysicsConfig(cfg.Physics), log.Named("physics")),
		Bus:     event.NewBus(),
	}

	if cfg.Player.LinearDamping > 0 {
		kinds.Player.LinearDamping = cfg.Player.LinearDamping
	}

	tcfg := spawn.DefaultTerrainConfig()
	tcfg.BlockColor = kinds.Block.Color
	terrain, err := spawn.GenerateTerrain(tcfg, w, scene.Stores, scene.Physics, m.Grid)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}

	wcfg := WitchConfig(cfg.AI)
	sp := spawn.New(spawn.Config{
		EdgeMargin:  cfg.Spawn.EdgeMargin,
		MaxAttempts: cfg.Spawn.MaxAttempts,
	}, w, scene.Stores, scene.Physics, m.Grid, rng, log.Named("spawn"))

	plan := []struct {
		n    int
		kind spawn.Kind
	}{
		{1, spawn.PlayerKind{Params: kinds.Player}},
		{cfg.Spawn.Trees, spawn.TreeKind{Params: kinds.Tree}},
		{cfg.Spawn.Balls, spawn.BallKind{Params: kinds.Ball}},
		{cfg.Spawn.Witches, spawn.WitchKind{
			Params: kinds.Witch,
			Patrol: func(r *rand.Rand) mgl32.Vec3 { return system.PickPatrolPoint(r, wcfg, scripts) },
		}},
	}
	for _, p := range plan {
		if _, err := sp.Spawn(p.n, p.kind); err != nil {
			return nil, fmt.Errorf("populate: %w", err)
		}
	}

	if scene.Stores.Players.Len() != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrNoPlayer, scene.Stores.Players.Len())
	}
	scene.Player, _, _ = scene.Stores.Players.First()
	pb, ok := scene.Stores.Bodies.Get(scene.Player)
	if !ok {
		return nil, fmt.Errorf("%w: player has no body", ErrNoPlayer)
	}
	scene.PlayerBody = pb.Body

	g := &Game{
		scene:   scene,
		runner:  coresys.NewRunner(),
		look:    system.NewMouseLook(cfg.Player.MouseSensitivity),
		terrain: terrain,
		mapInfo: m.Info,
		log:     log,
		session: session,
		tick:    cfg.Game.TickRate,
	}
	pos, _ := scene.PlayerPosition()
	g.camera = system.NewCamera(pos)
	g.player = system.NewPlayerSystem(scene, g.look, cfg.Player.Speed)
	g.ai = system.NewWitchAISystem(scene, wcfg, rng, scripts)

	system.SubscribeWitchLog(scene.Bus, log.Named("ai"))
	g.runner.Register(g.player)
	g.runner.Register(system.NewEventDispatchSystem(scene.Bus))
	g.runner.Register(system.NewPhysicsSystem(scene.Physics))
	g.runner.Register(g.ai)
	g.runner.Register(system.NewCameraSystem(scene, g.look, g.camera))

	log.Info("game started",
		zap.String("map", m.Info.Name),
		zap.Int("entities", w.Len()),
		zap.Int("bodies", scene.Physics.BodyCount()),
		zap.Int("witches", scene.Stores.Witches.Len()))
	return g, nil
}

// Update runs one frame. The witches see the positions produced by this
// frame's step, and their velocities take effect on the next one.
func (g *Game) Update(in system.Input) Transition {
	g.player.SetInput(in)
	g.runner.Tick(g.tick)
	g.frame++
	if !g.ai.Caught() {
		return Continue
	}
	// The caught events would otherwise be dispatched next frame, which
	// never runs.
	g.scene.Bus.SwapBuffers()
	g.scene.Bus.DispatchAll()
	g.log.Info("game over", zap.Int("frame", g.frame))
	return GameOver
}

func (g *Game) Scene() *system.Scene    { return g.scene }
func (g *Game) Camera() *system.Camera  { return g.camera }
func (g *Game) Look() *system.MouseLook { return g.look }
func (g *Game) Terrain() spawn.Terrain  { return g.terrain }
func (g *Game) Map() data.MapInfo       { return g.mapInfo }
func (g *Game) Session() string         { return g.session }
func (g *Game) Frame() int              { return g.frame }
func (g *Game) Player() ecs.EntityID    { return g.scene.Player }

func (g *Game) PlayerBody() physics.BodyHandle { return g.scene.PlayerBody }
