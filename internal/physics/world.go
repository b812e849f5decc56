package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/core/ecs"
)

// ErrInvalidHandle is returned when an insert references a body that does
// not exist (never inserted, or already removed).
var ErrInvalidHandle = errors.New("physics: invalid handle")

// Config holds the stepping parameters.
type Config struct {
	Gravity          mgl32.Vec3
	Timestep         float32 // seconds per Step
	SolverIterations int
	MaxCCDSubsteps   int
	CellSize         float32 // broad-phase and query grid cell edge
}

// DefaultConfig matches a 60 Hz loop under Earth gravity.
func DefaultConfig() Config {
	return Config{
		Gravity:          mgl32.Vec3{0, -9.81, 0},
		Timestep:         1.0 / 60.0,
		SolverIterations: 4,
		MaxCCDSubsteps:   16,
		CellSize:         4,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Timestep <= 0 {
		c.Timestep = d.Timestep
	}
	if c.SolverIterations <= 0 {
		c.SolverIterations = d.SolverIterations
	}
	if c.MaxCCDSubsteps <= 0 {
		c.MaxCCDSubsteps = 1
	}
	if c.CellSize <= 0 {
		c.CellSize = d.CellSize
	}
	return c
}

// World owns every rigid body, collider and joint, and the collider to
// entity map used to resolve query results back into the ECS.
// Accessed only from the game loop goroutine, no locks.
type World struct {
	cfg Config
	log *zap.Logger

	bodies    arena[RigidBody]
	colliders arena[Collider]
	joints    arena[DistanceJoint]
	owners    map[ColliderHandle]ecs.EntityID

	broad    *cellGrid
	proxies  []proxy
	pairBuf  []pair
	contacts []contact
	query    *queryPipeline
	rayBuf   []int

	steps uint64
}

func NewWorld(cfg Config, log *zap.Logger) *World {
	cfg = cfg.normalized()
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		cfg:    cfg,
		log:    log,
		owners: make(map[ColliderHandle]ecs.EntityID, 64),
		broad:  newCellGrid(cfg.CellSize),
		query:  newQueryPipeline(cfg.CellSize),
	}
}

func (w *World) Config() Config    { return w.cfg }
func (w *World) Timestep() float32 { return w.cfg.Timestep }
func (w *World) Steps() uint64     { return w.steps }
func (w *World) BodyCount() int    { return w.bodies.len() }
func (w *World) ColliderCount() int {
	return w.colliders.len()
}

// InsertBody adds a body and returns its handle.
func (w *World) InsertBody(d BodyDesc) BodyHandle {
	b := newRigidBody(d)
	b.recomputeMass(w)
	return BodyHandle(w.bodies.insert(b))
}

// Body returns the body for h, or false if h is stale.
// The pointer is valid until the next InsertBody.
func (w *World) Body(h BodyHandle) (*RigidBody, bool) {
	return w.bodies.get(uint64(h))
}

// RemoveBody removes the body together with its colliders and any joint
// attached to it.
func (w *World) RemoveBody(h BodyHandle) bool {
	b, ok := w.bodies.get(uint64(h))
	if !ok {
		return false
	}
	for _, ch := range append([]ColliderHandle(nil), b.colliders...) {
		w.RemoveCollider(ch)
	}
	var stale []uint64
	w.joints.each(func(jh uint64, j *DistanceJoint) {
		if j.BodyA == h || j.BodyB == h {
			stale = append(stale, jh)
		}
	})
	for _, jh := range stale {
		w.joints.remove(jh)
	}
	w.bodies.remove(uint64(h))
	w.log.Debug("physics body removed", zap.Uint32("index", h.Index()), zap.Uint32("generation", h.Generation()))
	return true
}

// InsertCollider attaches a collider to parent.
func (w *World) InsertCollider(d ColliderDesc, parent BodyHandle) (ColliderHandle, error) {
	b, ok := w.bodies.get(uint64(parent))
	if !ok {
		return 0, fmt.Errorf("insert collider on body %d: %w", parent, ErrInvalidHandle)
	}
	density := d.Density
	if density <= 0 {
		density = 1
	}
	h := ColliderHandle(w.colliders.insert(Collider{
		shape:       d.Shape,
		density:     density,
		restitution: d.Restitution,
		friction:    d.Friction,
		parent:      parent,
	}))
	b.colliders = append(b.colliders, h)
	b.recomputeMass(w)
	w.query.markDirty()
	return h, nil
}

// Collider returns the collider for h, or false if h is stale.
func (w *World) Collider(h ColliderHandle) (*Collider, bool) {
	return w.colliders.get(uint64(h))
}

// RemoveCollider detaches and frees a collider and forgets its owner.
func (w *World) RemoveCollider(h ColliderHandle) bool {
	c, ok := w.colliders.remove(uint64(h))
	if !ok {
		return false
	}
	delete(w.owners, h)
	if b, ok := w.bodies.get(uint64(c.parent)); ok {
		for i, ch := range b.colliders {
			if ch == h {
				b.colliders = append(b.colliders[:i], b.colliders[i+1:]...)
				break
			}
		}
		b.recomputeMass(w)
	}
	w.query.markDirty()
	return true
}

// BindEntity records e as the owner of collider h.
func (w *World) BindEntity(h ColliderHandle, e ecs.EntityID) bool {
	if _, ok := w.colliders.get(uint64(h)); !ok {
		return false
	}
	w.owners[h] = e
	return true
}

// EntityOf resolves a collider to its owning entity.
func (w *World) EntityOf(h ColliderHandle) (ecs.EntityID, bool) {
	e, ok := w.owners[h]
	return e, ok
}

// EachCollider visits every collider with its world bounds, in handle order.
// Used by debug wireframe consumers.
func (w *World) EachCollider(fn func(ColliderHandle, *Collider, AABB)) {
	w.colliders.each(func(h uint64, c *Collider) {
		b, ok := w.bodies.get(uint64(c.parent))
		if !ok {
			return
		}
		fn(ColliderHandle(h), c, c.aabb(b.translation))
	})
}
