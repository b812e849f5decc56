package physics

// Handles encode a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits, the same layout as ecs.EntityID. A slot's
// generation increments when it is freed, so handles held across a removal
// resolve to "not found" instead of aliasing a new occupant.

// BodyHandle identifies a rigid body inside a World.
type BodyHandle uint64

// ColliderHandle identifies a collider inside a World.
type ColliderHandle uint64

// JointHandle identifies a joint inside a World.
type JointHandle uint64

func (h BodyHandle) Index() uint32      { return uint32(h) }
func (h BodyHandle) Generation() uint32 { return uint32(h >> 32) }
func (h BodyHandle) IsZero() bool       { return h == 0 }

func (h ColliderHandle) Index() uint32      { return uint32(h) }
func (h ColliderHandle) Generation() uint32 { return uint32(h >> 32) }
func (h ColliderHandle) IsZero() bool       { return h == 0 }

func (h JointHandle) IsZero() bool { return h == 0 }

type arenaSlot[T any] struct {
	gen   uint32
	alive bool
	val   T
}

// arena is a generational slot map. Pointers returned by get stay valid
// until the next insert.
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

func packHandle(index, gen uint32) uint64 {
	return uint64(gen)<<32 | uint64(index)
}

func (a *arena[T]) insert(v T) uint64 {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.alive = true
		s.val = v
		return packHandle(idx, s.gen)
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, arenaSlot[T]{gen: 1, alive: true, val: v})
	return packHandle(idx, 1)
}

func (a *arena[T]) get(h uint64) (*T, bool) {
	idx := uint32(h)
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.alive || s.gen != uint32(h>>32) {
		return nil, false
	}
	return &s.val, true
}

func (a *arena[T]) remove(h uint64) (T, bool) {
	var zero T
	idx := uint32(h)
	if int(idx) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[idx]
	if !s.alive || s.gen != uint32(h>>32) {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.alive = false
	s.gen++
	a.free = append(a.free, idx)
	a.live--
	return v, true
}

// each visits live slots in index order.
func (a *arena[T]) each(fn func(uint64, *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.alive {
			fn(packHandle(uint32(i), s.gen), &s.val)
		}
	}
}

func (a *arena[T]) len() int { return a.live }
