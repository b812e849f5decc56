package system

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/core/ecs"
	"github.com/witchwood/sim/internal/core/event"
	"github.com/witchwood/sim/internal/physics"
	"github.com/witchwood/sim/internal/spawn"
)

func newScene(t *testing.T) *Scene {
	t.Helper()
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl32.Vec3{}
	w := ecs.NewWorld()
	return &Scene{
		ECS:     w,
		Stores:  component.NewStores(w),
		Physics: physics.NewWorld(cfg, zap.NewNop()),
		Bus:     event.NewBus(),
	}
}

func characterBlueprint(pos mgl32.Vec3, bundle component.Bundle) spawn.Blueprint {
	return spawn.Blueprint{
		Body:     physics.DynamicBody(pos),
		Collider: physics.NewCollider(physics.RoundCuboid(0.5, 1, 0.5, 0.1)),
		Bundle:   bundle,
	}
}

func addPlayer(t *testing.T, s *Scene, pos mgl32.Vec3) {
	t.Helper()
	id, body, err := spawn.Materialize(s.ECS, s.Stores, s.Physics, characterBlueprint(pos, component.Player{Width: 1, Height: 2}))
	require.NoError(t, err)
	s.Player = id
	s.PlayerBody = body.Body
}

func addWitch(t *testing.T, s *Scene, pos mgl32.Vec3, state component.WitchState, target mgl32.Vec3) (ecs.EntityID, component.Body) {
	t.Helper()
	id, body, err := spawn.Materialize(s.ECS, s.Stores, s.Physics, characterBlueprint(pos, component.Witch{
		Width: 1, Height: 2, Color: component.Purple, State: state, Target: target,
	}))
	require.NoError(t, err)
	return id, body
}

func addBlocker(t *testing.T, s *Scene, pos mgl32.Vec3) physics.BodyHandle {
	t.Helper()
	_, body, err := spawn.Materialize(s.ECS, s.Stores, s.Physics, spawn.Blueprint{
		Body:     physics.FixedBody(pos),
		Collider: physics.NewCollider(physics.Cuboid(0.5, 0.5, 0.5)),
		Bundle:   component.Block{Size: 1},
	})
	require.NoError(t, err)
	return body.Body
}

func testRNG() *rand.Rand { return rand.New(rand.NewPCG(42, 7)) }
