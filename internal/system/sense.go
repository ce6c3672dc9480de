package system

import (
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/world"
)

// SenseSystem lets every explorer observe the disc of cells around it and
// records what it sees in the main knowledge copy. Phase 0 (Sense).
type SenseSystem struct {
	world *world.State
	disc  []grid.Pos // offsets inside the radius
	rim   []grid.Pos // offsets on the outer ring of the disc
}

func NewSenseSystem(ws *world.State, radius int) *SenseSystem {
	s := &SenseSystem{world: ws}
	r2 := radius * radius
	inner := (radius - 1) * (radius - 1)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			d := dx*dx + dy*dy
			if d > r2 {
				continue
			}
			s.disc = append(s.disc, grid.Pt(dx, dy))
			if d > inner {
				s.rim = append(s.rim, grid.Pt(dx, dy))
			}
		}
	}
	return s
}

func (s *SenseSystem) Phase() coresys.Phase { return coresys.PhaseSense }

func (s *SenseSystem) Update(_ time.Duration) {
	sensed := false
	s.world.Explorers.Each(func(id ecs.EntityID, _ *robot.Explorer) {
		cell, ok := s.world.Cell(id)
		if !ok {
			return
		}
		s.Observe(cell)
		sensed = true
	})
	if sensed {
		s.world.Knowledge.PruneFrontiers()
	}
}

// Observe records every cell within the radius of center. Known-empty cells
// on the rim that border unknown ground join the frontier backlog.
func (s *SenseSystem) Observe(center grid.Pos) {
	k := s.world.Knowledge
	for _, d := range s.disc {
		p := center.Add(d)
		if mat, solid := s.world.Terrain.Solid(p); solid {
			k.MarkSolid(p, mat)
		} else {
			k.MarkEmpty(p)
		}
	}
	for _, d := range s.rim {
		if p := center.Add(d); k.IsFrontier(p) {
			k.EnqueueFrontier(p)
		}
	}
}
