package system

import (
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/planner"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/world"
	"go.uber.org/zap"
)

// KnowledgePushSystem hands the planner a fresh knowledge snapshot every
// interval ticks, and on the tick after terrain changed. Phase 1 (Dispatch),
// registered before DispatchSystem so plans of the same tick already see it.
type KnowledgePushSystem struct {
	world     *world.State
	planner   Planner
	interval  int
	tickCount int
	dirty     bool
	pushes    int
	log       *zap.Logger
}

func NewKnowledgePushSystem(ws *world.State, p Planner, bus *event.Bus, intervalTicks int, log *zap.Logger) *KnowledgePushSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &KnowledgePushSystem{
		world:    ws,
		planner:  p,
		interval: intervalTicks,
		dirty:    true, // first tick always pushes
		log:      log,
	}
	event.Subscribe(bus, func(ev event.TerrainUpdated) {
		s.dirty = true
	})
	return s
}

func (s *KnowledgePushSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *KnowledgePushSystem) Update(_ time.Duration) {
	s.tickCount++
	if !s.dirty && s.tickCount < s.interval {
		return
	}
	if !s.planner.PublishKnowledge(s.world.Knowledge) {
		// queue full: keep the flag so the next tick retries
		s.dirty = true
		s.log.Debug("knowledge push dropped")
		return
	}
	s.tickCount = 0
	s.dirty = false
	s.pushes++
}

// Pushes returns how many snapshots were accepted by the planner.
func (s *KnowledgePushSystem) Pushes() int { return s.pushes }

// DispatchSystem sends one planning command per idle robot each tick.
// Robots that are mid-step are skipped; their plan is made once they stand
// on a cell again. Phase 1 (Dispatch).
type DispatchSystem struct {
	world   *world.State
	planner Planner
	dropped int
}

func NewDispatchSystem(ws *world.State, p Planner) *DispatchSystem {
	return &DispatchSystem{world: ws, planner: p}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	s.world.Explorers.Each(func(id ecs.EntityID, e *robot.Explorer) {
		if e.Moving {
			return
		}
		cell, ok := s.world.Cell(id)
		if !ok {
			return
		}
		s.send(planner.PlanExplorerMovement{
			AgentID:   id,
			Position:  cell,
			Explorer:  e.Clone(),
			DeltaTime: secs,
		})
	})
	s.world.Miners.Each(func(id ecs.EntityID, m *robot.Miner) {
		if m.Moving {
			return
		}
		cell, ok := s.world.Cell(id)
		if !ok {
			return
		}
		s.send(planner.PlanMinerMovement{
			AgentID:   id,
			Position:  cell,
			Miner:     m.Clone(),
			DeltaTime: secs,
		})
	})
}

func (s *DispatchSystem) send(cmd planner.Command) {
	if !s.planner.Send(cmd) {
		// retried next tick
		s.dropped++
	}
}

// Dropped returns how many commands the planner queue rejected.
func (s *DispatchSystem) Dropped() int { return s.dropped }
