// Package spawn places entities on free tiles and binds each one to a
// physics body and collider.
package spawn

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/grid"
	"github.com/witchwood/sim/internal/physics"
)

// ErrCapacity is returned when no free tile is left for another entity.
var ErrCapacity = errors.New("spawn: no free tile left")

// Blueprint is everything needed to materialise one entity.
type Blueprint struct {
	Body     physics.BodyDesc
	Collider physics.ColliderDesc
	Bundle   component.Bundle
}

// Kind builds the blueprint of one entity kind for a tile that is already
// known to be free. Build must not touch the physics world.
type Kind interface {
	Name() string
	Build(tile grid.Coord, g *grid.Grid, rng *rand.Rand) Blueprint
}

// Config bounds placement.
type Config struct {
	EdgeMargin  int // tiles kept clear along every edge
	MaxAttempts int // random draws per entity before enumerating free tiles
}

func DefaultConfig() Config {
	return Config{EdgeMargin: 2, MaxAttempts: 64}
}

// Spawner owns no state of its own beyond its collaborators; occupancy is
// always derived from live body positions.
type Spawner struct {
	cfg    Config
	world  *ecs.World
	stores *component.Stores
	phys   *physics.World
	grid   *grid.Grid
	rng    *rand.Rand
	log    *zap.Logger
}

func New(cfg Config, w *ecs.World, s *component.Stores, phys *physics.World, g *grid.Grid, rng *rand.Rand, log *zap.Logger) *Spawner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.EdgeMargin < 0 {
		cfg.EdgeMargin = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{cfg: cfg, world: w, stores: s, phys: phys, grid: g, rng: rng, log: log}
}

// Occupied returns the tiles covered by footprint entities, from their
// current body positions.
func (s *Spawner) Occupied() map[grid.Coord]struct{} {
	occ := make(map[grid.Coord]struct{}, s.stores.Footprints.Len())
	ecs.Each2(s.stores.Footprints, s.stores.Bodies, func(_ ecs.EntityID, _ *component.Footprint, b *component.Body) {
		body, ok := s.phys.Body(b.Body)
		if !ok {
			return
		}
		occ[s.grid.WorldToTile(body.Translation())] = struct{}{}
	})
	return occ
}

// Spawn places n entities of kind k on distinct free tiles inside the edge
// margin. It returns the entities placed so far together with ErrCapacity
// when the map runs out of room.
func (s *Spawner) Spawn(n int, k Kind) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, n)
	occ := s.Occupied()
	for len(ids) < n {
		tile, ok := s.pickTile(occ)
		if !ok {
			s.log.Warn("spawn capacity reached",
				zap.String("kind", k.Name()),
				zap.Int("requested", n),
				zap.Int("placed", len(ids)))
			return ids, fmt.Errorf("spawn %s %d/%d: %w", k.Name(), len(ids)+1, n, ErrCapacity)
		}
		id, err := s.SpawnAt(tile, k)
		if err != nil {
			return ids, err
		}
		occ[tile] = struct{}{}
		ids = append(ids, id)
	}
	s.log.Debug("spawned", zap.String("kind", k.Name()), zap.Int("count", n))
	return ids, nil
}

// pickTile draws random tiles inside the margin, then falls back to a
// uniform choice among the remaining free tiles so the loop always ends.
func (s *Spawner) pickTile(occ map[grid.Coord]struct{}) (grid.Coord, bool) {
	x0, x1 := grid.Inset(s.grid.Width(), s.cfg.EdgeMargin)
	z0, z1 := grid.Inset(s.grid.Height(), s.cfg.EdgeMargin)
	if x1 <= x0 || z1 <= z0 {
		return grid.Coord{}, false
	}
	free := func(c grid.Coord) bool {
		if !s.grid.IsFree(c) {
			return false
		}
		_, taken := occ[c]
		return !taken
	}
	for i := 0; i < s.cfg.MaxAttempts; i++ {
		c := grid.Coord{X: x0 + s.rng.IntN(x1-x0), Z: z0 + s.rng.IntN(z1-z0)}
		if free(c) {
			return c, true
		}
	}
	var left []grid.Coord
	for _, c := range s.grid.FreeInset(s.cfg.EdgeMargin) {
		if free(c) {
			left = append(left, c)
		}
	}
	if len(left) == 0 {
		return grid.Coord{}, false
	}
	return left[s.rng.IntN(len(left))], true
}

// SpawnAt materialises one entity of kind k on tile without checking it.
func (s *Spawner) SpawnAt(tile grid.Coord, k Kind) (ecs.EntityID, error) {
	bp := k.Build(tile, s.grid, s.rng)
	id, _, err := Materialize(s.world, s.stores, s.phys, bp)
	if err != nil {
		return ecs.NoEntity, fmt.Errorf("spawn %s at %s: %w", k.Name(), tile, err)
	}
	return id, nil
}

// Materialize inserts the body and collider, creates the entity, attaches
// the bundle and binds the collider back to the entity. On failure nothing
// is left behind in either world.
func Materialize(w *ecs.World, stores *component.Stores, phys *physics.World, bp Blueprint) (ecs.EntityID, component.Body, error) {
	bh := phys.InsertBody(bp.Body)
	ch, err := phys.InsertCollider(bp.Collider, bh)
	if err != nil {
		phys.RemoveBody(bh)
		return ecs.NoEntity, component.Body{}, err
	}
	id := w.CreateEntity()
	body := component.Body{Body: bh, Collider: ch}
	stores.Bodies.Set(id, &body)
	if bp.Bundle != nil {
		bp.Bundle.Attach(id, stores)
	}
	phys.BindEntity(ch, id)
	return id, body, nil
}

// Despawn removes the entity and its physics body.
func Despawn(w *ecs.World, stores *component.Stores, phys *physics.World, id ecs.EntityID) bool {
	if b, ok := stores.Bodies.Get(id); ok {
		phys.RemoveBody(b.Body)
	}
	return w.DestroyEntity(id)
}
