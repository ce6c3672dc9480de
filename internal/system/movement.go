package system

import (
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/world"
)

// MovementSystem owns the move timers. A moving robot is interpolated from
// the cell it left towards its target and snapped onto the target once a
// full step has elapsed. Phase 3 (Move).
type MovementSystem struct {
	world *world.State
}

func NewMovementSystem(ws *world.State) *MovementSystem {
	return &MovementSystem{world: ws}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	s.world.Explorers.Each(func(id ecs.EntityID, e *robot.Explorer) {
		if !e.Moving {
			return
		}
		tr, ok := s.world.Transforms.Get(id)
		if !ok {
			return
		}
		e.Moving, e.MoveTimer = s.step(tr, e.Target, e.MoveTimer+secs, e.StepDuration())
	})
	s.world.Miners.Each(func(id ecs.EntityID, m *robot.Miner) {
		if !m.Moving {
			return
		}
		tr, ok := s.world.Transforms.Get(id)
		if !ok {
			return
		}
		m.Moving, m.MoveTimer = s.step(tr, m.Target, m.MoveTimer+secs, m.StepDuration())
	})
}

// step advances one transform and returns the new (moving, timer) pair.
// A target that is no longer walkable cancels the move.
func (s *MovementSystem) step(tr *world.Transform, target grid.Pos, timer, duration float64) (bool, float64) {
	if !s.world.Terrain.IsWalkable(target) {
		tr.Place(tr.Origin)
		return false, 0
	}
	t := timer / duration
	if t >= 1 {
		tr.Place(target)
		return false, 0
	}
	ox, oy := tr.Origin.ToWorld()
	tx, ty := target.ToWorld()
	tr.X = ox + (tx-ox)*t
	tr.Y = oy + (ty-oy)*t
	return true, timer
}
