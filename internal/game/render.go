package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/physics"
)

// Renderer consumes the drawable state of a frame. Positions are body
// centers in world space.
type Renderer interface {
	Ground(pos mgl32.Vec3, g component.Ground)
	Wall(pos mgl32.Vec3, w component.Wall)
	Block(pos mgl32.Vec3, b component.Block)
	Tree(pos mgl32.Vec3, t component.Tree)
	Ball(pos mgl32.Vec3, b component.Ball)
	Witch(pos mgl32.Vec3, w component.Witch)
}

// DebugRenderer also receives every collider's world bounds.
type DebugRenderer interface {
	Renderer
	Collider(h physics.ColliderHandle, box physics.AABB)
}

// Draw hands every visible entity to r. The player is the camera and is
// not drawn. Entities whose body is gone are skipped.
func (g *Game) Draw(r Renderer) {
	s := g.scene
	pos := func(b *component.Body) (mgl32.Vec3, bool) {
		body, ok := s.Physics.Body(b.Body)
		if !ok {
			return mgl32.Vec3{}, false
		}
		return body.Translation(), true
	}

	ecs.Each2(s.Stores.Grounds, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Ground, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Ground(p, *c)
		}
	})
	ecs.Each2(s.Stores.Walls, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Wall, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Wall(p, *c)
		}
	})
	ecs.Each2(s.Stores.Blocks, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Block, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Block(p, *c)
		}
	})
	ecs.Each2(s.Stores.Trees, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Tree, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Tree(p, *c)
		}
	})
	ecs.Each2(s.Stores.Balls, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Ball, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Ball(p, *c)
		}
	})
	ecs.Each2(s.Stores.Witches, s.Stores.Bodies, func(_ ecs.EntityID, c *component.Witch, b *component.Body) {
		if p, ok := pos(b); ok {
			r.Witch(p, *c)
		}
	})

	if d, ok := r.(DebugRenderer); ok {
		s.Physics.EachCollider(func(h physics.ColliderHandle, _ *physics.Collider, box physics.AABB) {
			d.Collider(h, box)
		})
	}
}
