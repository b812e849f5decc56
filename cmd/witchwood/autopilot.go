package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/witchwood/sim/internal/component"
	"github.com/witchwood/sim/internal/game"
	"github.com/witchwood/sim/internal/system"
)

// autopilot stands in for a keyboard and mouse: it walks forward and
// sweeps the view, turning back whenever it stops making progress.
type autopilot struct {
	frame int
	turn  float32
	last  [2]float32
}

const (
	sweepPixels = 4   // mouse dx per frame while sweeping
	turnPixels  = 300 // mouse dx per frame while turning away from a wall
	stuckFrames = 20
)

func (a *autopilot) Next(g *game.Game) system.Input {
	a.frame++
	in := system.Input{Forward: true, MouseDX: sweepPixels}
	if (a.frame/120)%2 == 1 {
		in.MouseDX = -sweepPixels
		in.Right = a.frame%240 > 200
	}

	if a.frame%stuckFrames == 0 {
		if pos, ok := g.Scene().PlayerPosition(); ok {
			dx, dz := pos.X()-a.last[0], pos.Z()-a.last[1]
			if dx*dx+dz*dz < 0.25 {
				a.turn = stuckFrames / 2
			}
			a.last = [2]float32{pos.X(), pos.Z()}
		}
	}
	if a.turn > 0 {
		a.turn--
		in.MouseDX = turnPixels
	}
	return in
}

// frameStats counts drawables for the end-of-round log line.
type frameStats struct {
	grounds, walls, blocks, trees, balls, witches int
}

func (s *frameStats) Ground(mgl32.Vec3, component.Ground) { s.grounds++ }
func (s *frameStats) Wall(mgl32.Vec3, component.Wall)     { s.walls++ }
func (s *frameStats) Block(mgl32.Vec3, component.Block)   { s.blocks++ }
func (s *frameStats) Tree(mgl32.Vec3, component.Tree)     { s.trees++ }
func (s *frameStats) Ball(mgl32.Vec3, component.Ball)     { s.balls++ }
func (s *frameStats) Witch(mgl32.Vec3, component.Witch)   { s.witches++ }

func (s *frameStats) Total() int {
	return s.grounds + s.walls + s.blocks + s.trees + s.balls + s.witches
}
