package system

import (
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/core/event"
	coresys "github.com/witchwood/sim/internal/core/system"
	"github.com/witchwood/sim/internal/physics"
	"github.com/witchwood/sim/internal/scripting"
)

// WitchConfig tunes the witch behaviour.
type WitchConfig struct {
	ChaseSpeed      float32 // units/s while Chasing
	PatrolSpeed     float32 // units/s while Patrolling
	CatchDistance   float32 // a Chasing witch closer than this catches the player
	ArrivalDistance float32 // a Patrolling witch this close to its target retargets
	PatrolExtent    float32 // patrol targets lie within ±extent of PatrolCenter on X and Z
	PatrolCenter    mgl32.Vec3
}

// DefaultWitchConfig patrols faster than it chases. That inversion is the
// shipped tuning and is kept as is.
func DefaultWitchConfig() WitchConfig {
	return WitchConfig{
		ChaseSpeed:      3.0,
		PatrolSpeed:     5.0,
		CatchDistance:   1.0,
		ArrivalDistance: 1.0,
		PatrolExtent:    10,
	}
}

// WitchScripts are optional Lua overrides for speed and patrol targets.
type WitchScripts interface {
	WitchSpeed(ctx scripting.SpeedContext) (float32, bool)
	PatrolPoint(ctx scripting.PatrolContext) (x, z float32, ok bool)
}

// Transition is the witch state table: a visible player starts a chase,
// losing sight ends it. Every other combination keeps the state.
func Transition(state component.WitchState, visible bool) (component.WitchState, bool) {
	switch {
	case visible && state == component.Patrolling:
		return component.Chasing, true
	case !visible && state == component.Chasing:
		return component.Patrolling, true
	default:
		return state, false
	}
}

// WitchAISystem perceives the player by raycast, runs the state table and
// steers every witch. Velocities it sets are integrated by the next
// frame's step. Phase 3 (PostUpdate).
type WitchAISystem struct {
	scene   *Scene
	cfg     WitchConfig
	rng     *rand.Rand
	scripts WitchScripts
	caught  bool
}

func NewWitchAISystem(scene *Scene, cfg WitchConfig, rng *rand.Rand, scripts WitchScripts) *WitchAISystem {
	return &WitchAISystem{scene: scene, cfg: cfg, rng: rng, scripts: scripts}
}

func (s *WitchAISystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *WitchAISystem) Update(_ time.Duration) {
	s.caught = s.Evaluate()
}

// Caught reports whether the last Update caught the player.
func (s *WitchAISystem) Caught() bool { return s.caught }

// PatrolPoint draws a patrol target at ground level.
func (s *WitchAISystem) PatrolPoint() mgl32.Vec3 {
	return PickPatrolPoint(s.rng, s.cfg, s.scripts)
}

// PickPatrolPoint draws a target uniformly within the patrol square. Two
// draws are consumed whether or not a script overrides the placement.
func PickPatrolPoint(rng *rand.Rand, cfg WitchConfig, scripts WitchScripts) mgl32.Vec3 {
	u, v := rng.Float32(), rng.Float32()
	c := cfg.PatrolCenter
	if scripts != nil {
		x, z, ok := scripts.PatrolPoint(scripting.PatrolContext{
			Extent:  cfg.PatrolExtent,
			CenterX: c.X(),
			CenterZ: c.Z(),
			U:       u,
			V:       v,
		})
		if ok {
			return mgl32.Vec3{x, c.Y(), z}
		}
	}
	return mgl32.Vec3{
		c.X() + (u*2-1)*cfg.PatrolExtent,
		c.Y(),
		c.Z() + (v*2-1)*cfg.PatrolExtent,
	}
}

// CanSee casts from the witch to the player, ignoring the witch's own
// collider. The player is visible when nothing is hit or the first hit
// belongs to the player.
func (s *WitchAISystem) CanSee(from, to mgl32.Vec3, self physics.ColliderHandle) bool {
	d := to.Sub(from)
	dist := d.Len()
	if dist < 1e-6 {
		return true
	}
	hit, ok := s.scene.Physics.CastRay(from, d, dist, physics.QueryFilter{ExcludeCollider: self})
	if !ok {
		return true
	}
	owner, ok := s.scene.Physics.EntityOf(hit.Collider)
	return ok && owner == s.scene.Player
}

func (s *WitchAISystem) speed(state component.WitchState, dist float32) float32 {
	v := s.cfg.PatrolSpeed
	if state == component.Chasing {
		v = s.cfg.ChaseSpeed
	}
	if s.scripts != nil {
		if o, ok := s.scripts.WitchSpeed(scripting.SpeedContext{State: state.String(), Distance: dist, Default: v}); ok && o >= 0 {
			return o
		}
	}
	return v
}

// Evaluate runs one AI pass over every witch and reports whether any of
// them caught the player. Witches whose body is gone are skipped.
func (s *WitchAISystem) Evaluate() bool {
	playerPos, ok := s.scene.PlayerPosition()
	if !ok {
		return false
	}
	caught := false
	ecs.Each2(s.scene.Stores.Witches, s.scene.Stores.Bodies, func(id ecs.EntityID, w *component.Witch, b *component.Body) {
		body, ok := s.scene.Physics.Body(b.Body)
		if !ok {
			return
		}
		pos := body.Translation()

		visible := s.CanSee(pos, playerPos, b.Collider)
		if next, changed := Transition(w.State, visible); changed {
			w.State = next
			if next == component.Chasing {
				event.Emit(s.scene.Bus, event.WitchSpottedPlayer{Witch: id, Distance: playerPos.Sub(pos).Len()})
			} else {
				w.Target = s.PatrolPoint()
				event.Emit(s.scene.Bus, event.WitchLostPlayer{Witch: id})
				event.Emit(s.scene.Bus, event.PatrolPointPicked{Witch: id, Target: w.Target})
			}
		}

		target := w.Target
		if w.State == component.Chasing {
			target = playerPos
		}
		// Steering is planar: targets sit at ground level while bodies
		// stand above it.
		delta := mgl32.Vec3{target.X() - pos.X(), 0, target.Z() - pos.Z()}
		dist := delta.Len()

		// Beyond reach the witch steers. Within it a patrol retargets, and a
		// chase strictly inside it catches.
		reach := s.cfg.ArrivalDistance
		if w.State == component.Chasing {
			reach = s.cfg.CatchDistance
		}
		switch {
		case dist > reach:
			dir := delta.Mul(1 / dist).Mul(s.speed(w.State, dist))
			body.SetLinVel(mgl32.Vec3{dir.X(), body.LinVel().Y(), dir.Z()})
		case w.State == component.Patrolling:
			w.Target = s.PatrolPoint()
			event.Emit(s.scene.Bus, event.PatrolPointPicked{Witch: id, Target: w.Target})
		case dist < reach:
			caught = true
			event.Emit(s.scene.Bus, event.PlayerCaught{Witch: id, Player: s.scene.Player})
		}
	})
	return caught
}
