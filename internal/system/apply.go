package system

import (
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/planner"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/trace"
	"github.com/redsoil/colony/internal/world"
	"go.uber.org/zap"
)

// ApplySystem drains planner results and merges them into robot state.
// Phase 2 (Apply).
//
// A result is dropped when its robot is gone, is already moving, or no
// longer stands on the cell the plan was made for.
type ApplySystem struct {
	world    *world.State
	planner  Planner
	bus      *event.Bus
	recorder trace.Recorder // nil disables tracing
	log      *zap.Logger

	tick    uint64
	applied int
	stale   int
}

func NewApplySystem(ws *world.State, p Planner, bus *event.Bus, rec trace.Recorder, log *zap.Logger) *ApplySystem {
	return &ApplySystem{world: ws, planner: p, bus: bus, recorder: rec, log: log}
}

func (s *ApplySystem) Phase() coresys.Phase { return coresys.PhaseApply }

func (s *ApplySystem) Update(_ time.Duration) {
	s.tick++
	s.planner.Drain(func(r planner.Result) {
		switch res := r.(type) {
		case planner.ExplorerMovementPlan:
			s.applyExplorer(res)
		case planner.MinerMovementPlan:
			s.applyMiner(res)
		}
	})
}

// Applied returns the number of merged plans; Stale the number dropped.
func (s *ApplySystem) Applied() int { return s.applied }
func (s *ApplySystem) Stale() int   { return s.stale }

func (s *ApplySystem) applyExplorer(res planner.ExplorerMovementPlan) {
	e, ok := s.world.Explorers.Get(res.AgentID)
	if !ok {
		s.log.Debug("plan for unknown explorer", zap.Stringer("agent", res.AgentID))
		return
	}
	tr, ok := s.fresh(res.AgentID, e.Moving, res.From)
	if !ok {
		return
	}

	e.Target = res.NewTarget
	e.Moving = res.IsMoving
	e.MoveTimer = 0
	e.Previous = res.PreviousPosition
	e.FollowDirection = res.FollowDirection
	tr.Origin = res.From
	s.applied++

	s.record(trace.PlanRecord{
		Tick:   s.tick,
		Agent:  res.AgentID.String(),
		Kind:   "explorer",
		From:   res.From,
		Target: res.NewTarget,
		Moving: res.IsMoving,
		Follow: res.FollowDirection,
	})
}

func (s *ApplySystem) applyMiner(res planner.MinerMovementPlan) {
	m, ok := s.world.Miners.Get(res.AgentID)
	if !ok {
		s.log.Debug("plan for unknown miner", zap.Stringer("agent", res.AgentID))
		return
	}
	tr, ok := s.fresh(res.AgentID, m.Moving, res.From)
	if !ok {
		return
	}
	if m.Task != res.PreviousTask {
		// the collection side changed the task after the command was sent
		s.stale++
		return
	}

	m.Target = res.NewTarget
	m.Moving = res.IsMoving
	m.MoveTimer = 0
	m.Task = res.CurrentTask
	tr.Origin = res.From
	s.applied++

	if res.PreviousTask == robot.TaskReturningToSpawn && res.CurrentTask == robot.TaskIdle && res.From == m.Spawn {
		s.unload(res.AgentID, m)
	}

	s.record(trace.PlanRecord{
		Tick:   s.tick,
		Agent:  res.AgentID.String(),
		Kind:   "miner",
		From:   res.From,
		Target: res.NewTarget,
		Moving: res.IsMoving,
		Task:   res.CurrentTask.String(),
	})
}

// fresh returns the robot's transform when a plan made for from still
// applies.
func (s *ApplySystem) fresh(id ecs.EntityID, moving bool, from grid.Pos) (*world.Transform, bool) {
	tr, ok := s.world.Transforms.Get(id)
	if !ok || moving || tr.Cell() != from {
		s.stale++
		return nil, false
	}
	return tr, true
}

func (s *ApplySystem) unload(id ecs.EntityID, m *robot.Miner) {
	for _, r := range s.world.Unload(m) {
		event.Emit(s.bus, event.ResourcesDeposited{Miner: id, Kind: r.Kind, Quantity: r.Quantity})
	}
}

func (s *ApplySystem) record(rec trace.PlanRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Write(rec); err != nil {
		s.log.Warn("trace write failed", zap.Error(err))
	}
}
