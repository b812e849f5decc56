package component

import "github.com/witchwood/sim/internal/core/ecs"

// Stores groups the component stores of one game world. Every store is
// registered with the ecs.World so DestroyEntity detaches all components.
type Stores struct {
	Bodies     *ecs.Store[Body]
	Players    *ecs.Store[Player]
	Footprints *ecs.Store[Footprint]
	Trees      *ecs.Store[Tree]
	Balls      *ecs.Store[Ball]
	Witches    *ecs.Store[Witch]
	Blocks     *ecs.Store[Block]
	Grounds    *ecs.Store[Ground]
	Walls      *ecs.Store[Wall]
}

func NewStores(w *ecs.World) *Stores {
	return &Stores{
		Bodies:     ecs.Register[Body](w),
		Players:    ecs.Register[Player](w),
		Footprints: ecs.Register[Footprint](w),
		Trees:      ecs.Register[Tree](w),
		Balls:      ecs.Register[Ball](w),
		Witches:    ecs.Register[Witch](w),
		Blocks:     ecs.Register[Block](w),
		Grounds:    ecs.Register[Ground](w),
		Walls:      ecs.Register[Wall](w),
	}
}

// Bundle is the kind-specific set of components attached to a freshly
// spawned entity. The Body component is attached by the spawner.
type Bundle interface {
	Attach(id ecs.EntityID, s *Stores)
}

func (p Player) Attach(id ecs.EntityID, s *Stores) {
	s.Players.Set(id, &p)
	s.Footprints.Set(id, &Footprint{})
}

func (t Tree) Attach(id ecs.EntityID, s *Stores) {
	s.Trees.Set(id, &t)
	s.Footprints.Set(id, &Footprint{})
}

func (b Ball) Attach(id ecs.EntityID, s *Stores) {
	s.Balls.Set(id, &b)
	s.Footprints.Set(id, &Footprint{})
}

func (w Witch) Attach(id ecs.EntityID, s *Stores) {
	s.Witches.Set(id, &w)
	s.Footprints.Set(id, &Footprint{})
}

func (b Block) Attach(id ecs.EntityID, s *Stores) { s.Blocks.Set(id, &b) }

func (g Ground) Attach(id ecs.EntityID, s *Stores) { s.Grounds.Set(id, &g) }

func (w Wall) Attach(id ecs.EntityID, s *Stores) { s.Walls.Set(id, &w) }
