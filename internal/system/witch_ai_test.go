package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/event"
	"github.com/witchwood/sim/internal/scripting"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		state   component.WitchState
		visible bool
		want    component.WitchState
		changed bool
	}{
		{component.Patrolling, true, component.Chasing, true},
		{component.Patrolling, false, component.Patrolling, false},
		{component.Chasing, true, component.Chasing, false},
		{component.Chasing, false, component.Patrolling, true},
	}
	for _, tc := range cases {
		got, changed := Transition(tc.state, tc.visible)
		assert.Equal(t, tc.want, got, "%s visible=%v", tc.state, tc.visible)
		assert.Equal(t, tc.changed, changed, "%s visible=%v", tc.state, tc.visible)
	}
}

func TestVisibilityBlockedAndRestored(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	from, to := mgl32.Vec3{0, 1, 0}, mgl32.Vec3{6, 1, 0}
	assert.True(t, ai.CanSee(from, to, wb.Collider), "clear line, first hit is the player")

	blocker := addBlocker(t, s, mgl32.Vec3{3, 1, 0})
	assert.False(t, ai.CanSee(from, to, wb.Collider))

	s.Physics.RemoveBody(blocker)
	assert.True(t, ai.CanSee(from, to, wb.Collider))
}

func TestVisibilityWithoutAnyHit(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	// Aim short of the player so nothing is hit at all.
	assert.True(t, ai.CanSee(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{3, 1, 0}, wb.Collider))
}

func TestSpottingStartsChase(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	id, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{-8, 0, 0})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	assert.False(t, ai.Evaluate())

	w, _ := s.Stores.Witches.Get(id)
	assert.Equal(t, component.Chasing, w.State)
	body, _ := s.Physics.Body(wb.Body)
	assert.InDelta(t, 3.0, body.LinVel().X(), 1e-5, "chase speed toward the player")
	assert.InDelta(t, 0, body.LinVel().Z(), 1e-5)
	assert.Equal(t, 1, event.Pending[event.WitchSpottedPlayer](s.Bus))
}

func TestBlockedWitchPatrolsAtPatrolSpeed(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	id, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{0, 0, -8})
	addBlocker(t, s, mgl32.Vec3{3, 1, 0})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	assert.False(t, ai.Evaluate())
	w, _ := s.Stores.Witches.Get(id)
	assert.Equal(t, component.Patrolling, w.State)

	body, _ := s.Physics.Body(wb.Body)
	assert.InDelta(t, 0, body.LinVel().X(), 1e-5)
	assert.InDelta(t, -5.0, body.LinVel().Z(), 1e-5, "patrol speed toward the target")
}

func TestSteeringKeepsVerticalVelocity(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	body, _ := s.Physics.Body(wb.Body)
	body.SetLinVel(mgl32.Vec3{0, -2, 0})

	NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil).Evaluate()
	assert.Equal(t, float32(-2), body.LinVel().Y())
	assert.InDelta(t, 3.0, body.LinVel().X(), 1e-5)
}

func TestLosingSightResumesPatrol(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	id, _ := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{100, 0, 100})
	addBlocker(t, s, mgl32.Vec3{3, 1, 0})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	assert.False(t, ai.Evaluate())
	w, _ := s.Stores.Witches.Get(id)
	assert.Equal(t, component.Patrolling, w.State)
	assert.LessOrEqual(t, abs(w.Target.X()), float32(10))
	assert.LessOrEqual(t, abs(w.Target.Z()), float32(10))
	assert.Equal(t, float32(0), w.Target.Y())
	assert.Equal(t, 1, event.Pending[event.WitchLostPlayer](s.Bus))
	assert.GreaterOrEqual(t, event.Pending[event.PatrolPointPicked](s.Bus), 1)
}

func TestArrivalPicksNewPatrolPoint(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	id, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{0.5, 0, 0.5})
	addBlocker(t, s, mgl32.Vec3{3, 1, 0})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	assert.False(t, ai.Evaluate())
	w, _ := s.Stores.Witches.Get(id)
	assert.NotEqual(t, mgl32.Vec3{0.5, 0, 0.5}, w.Target)
	assert.Equal(t, 1, event.Pending[event.PatrolPointPicked](s.Bus))

	body, _ := s.Physics.Body(wb.Body)
	assert.Equal(t, mgl32.Vec3{}, body.LinVel(), "arrival frame issues no velocity")
}

func TestCatchWhenChasingWithinReach(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{0.5, 1, 0})
	addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	addWitch(t, s, mgl32.Vec3{1, 1, 0}, component.Chasing, mgl32.Vec3{})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	ai.Update(0)
	assert.True(t, ai.Caught())
	assert.Equal(t, 2, event.Pending[event.PlayerCaught](s.Bus), "one per catching witch")
}

func TestSpottingAtCloseRangeCatches(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{0.5, 1, 0})
	id, _ := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, mgl32.Vec3{8, 0, 8})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	// The transition runs before the catch check in the same pass.
	assert.True(t, ai.Evaluate())
	w, _ := s.Stores.Witches.Get(id)
	assert.Equal(t, component.Chasing, w.State)
	assert.Equal(t, 1, event.Pending[event.WitchSpottedPlayer](s.Bus))
	assert.Equal(t, 1, event.Pending[event.PlayerCaught](s.Bus))
}

func TestNoCatchWithoutPlayer(t *testing.T) {
	s := newScene(t)
	addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)
	ai.Update(0)
	assert.False(t, ai.Caught())
}

func TestChaseExactlyAtCatchDistance(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{1, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)

	// Steering needs dist > reach and a catch needs dist < reach.
	assert.False(t, ai.Evaluate())
	body, _ := s.Physics.Body(wb.Body)
	assert.Equal(t, mgl32.Vec3{}, body.LinVel())
	assert.Equal(t, 0, event.Pending[event.PlayerCaught](s.Bus))
}

func TestArrivalIgnoresCatchDistance(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	target := mgl32.Vec3{0, 0, 1.2}
	id, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Patrolling, target)
	addBlocker(t, s, mgl32.Vec3{3, 1, 0})
	cfg := DefaultWitchConfig()
	cfg.CatchDistance = 1.3
	ai := NewWitchAISystem(s, cfg, testRNG(), nil)

	assert.False(t, ai.Evaluate())
	w, _ := s.Stores.Witches.Get(id)
	assert.Equal(t, target, w.Target, "still beyond the arrival radius")
	assert.Equal(t, 0, event.Pending[event.PatrolPointPicked](s.Bus))
	body, _ := s.Physics.Body(wb.Body)
	assert.InDelta(t, 5.0, body.LinVel().Z(), 1e-5)
}

func TestWitchWithoutBodyIsSkipped(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{0.5, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	s.Physics.RemoveBody(wb.Body)

	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), nil)
	assert.False(t, ai.Evaluate())
}

func TestPatrolPointsStayInSquare(t *testing.T) {
	cfg := DefaultWitchConfig()
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		p := PickPatrolPoint(rng, cfg, nil)
		assert.True(t, p.X() >= -10 && p.X() <= 10)
		assert.True(t, p.Z() >= -10 && p.Z() <= 10)
		assert.Equal(t, float32(0), p.Y())
	}

	cfg.PatrolCenter = mgl32.Vec3{10, 0, 10}
	cfg.PatrolExtent = 2
	p := PickPatrolPoint(rng, cfg, nil)
	assert.True(t, p.X() >= 8 && p.X() <= 12)
}

type fakeScripts struct {
	speed    float32
	speedOK  bool
	x, z     float32
	patrolOK bool
	lastCtx  scripting.SpeedContext
}

func (f *fakeScripts) WitchSpeed(ctx scripting.SpeedContext) (float32, bool) {
	f.lastCtx = ctx
	return f.speed, f.speedOK
}

func (f *fakeScripts) PatrolPoint(scripting.PatrolContext) (float32, float32, bool) {
	return f.x, f.z, f.patrolOK
}

func TestScriptOverrides(t *testing.T) {
	s := newScene(t)
	addPlayer(t, s, mgl32.Vec3{6, 1, 0})
	_, wb := addWitch(t, s, mgl32.Vec3{0, 1, 0}, component.Chasing, mgl32.Vec3{})
	fs := &fakeScripts{speed: 7, speedOK: true, x: 4, z: -4, patrolOK: true}
	ai := NewWitchAISystem(s, DefaultWitchConfig(), testRNG(), fs)

	ai.Evaluate()
	body, _ := s.Physics.Body(wb.Body)
	assert.InDelta(t, 7, body.LinVel().X(), 1e-5)
	assert.Equal(t, "chasing", fs.lastCtx.State)
	assert.Equal(t, float32(3), fs.lastCtx.Default)
	assert.Equal(t, mgl32.Vec3{4, 0, -4}, ai.PatrolPoint())

	fs.speedOK, fs.patrolOK = false, false
	ai.Evaluate()
	assert.InDelta(t, 3, body.LinVel().X(), 1e-5, "falls back to the configured speed")
	p := ai.PatrolPoint()
	assert.NotEqual(t, mgl32.Vec3{4, 0, -4}, p)
}

func TestScriptEngineSatisfiesWitchScripts(t *testing.T) {
	e, err := scripting.NewEngineFromSource(`function witch_speed(ctx) return 1 end`, nil)
	require.NoError(t, err)
	defer e.Close()

	var ws WitchScripts = e
	v, ok := ws.WitchSpeed(scripting.SpeedContext{State: "patrolling"})
	require.True(t, ok)
	assert.Equal(t, float32(1), v)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
