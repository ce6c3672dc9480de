package system

import (
	"testing"

	"github.com/redsoil/colony/internal/core/event"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/planner"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyExplorerPlan(t *testing.T) {
	ws := newState(t, openRoom)
	id := ws.SpawnExplorer(grid.Pt(2, 2), 2)
	prev := grid.Pt(1, 2)
	p := &syncPlanner{results: []planner.Result{planner.ExplorerMovementPlan{
		AgentID:          id,
		From:             grid.Pt(2, 2),
		NewTarget:        grid.Pt(3, 2),
		IsMoving:         true,
		PreviousPosition: &prev,
		FollowDirection:  -1,
	}}}
	rec := &recorder{}
	s := NewApplySystem(ws, p, event.NewBus(), rec, zap.NewNop())
	s.Update(tick)

	e, _ := ws.Explorers.Get(id)
	assert.Equal(t, grid.Pt(3, 2), e.Target)
	assert.True(t, e.Moving)
	assert.Equal(t, int8(-1), e.FollowDirection)
	require.NotNil(t, e.Previous)
	assert.Equal(t, prev, *e.Previous)
	assert.Equal(t, 1, s.Applied())

	require.Len(t, rec.records, 1)
	pr := rec.records[0].(trace.PlanRecord)
	assert.Equal(t, uint64(1), pr.Tick)
	assert.Equal(t, "explorer", pr.Kind)
	assert.Equal(t, id.String(), pr.Agent)
	assert.Equal(t, grid.Pt(3, 2), pr.Target)
}

func TestApplyDropsStalePlans(t *testing.T) {
	ws := newState(t, openRoom)
	moved := ws.SpawnExplorer(grid.Pt(2, 2), 2)
	busy := ws.SpawnExplorer(grid.Pt(3, 3), 2)
	e, _ := ws.Explorers.Get(busy)
	e.Moving = true
	e.Target = grid.Pt(4, 3)

	gone := ws.SpawnExplorer(grid.Pt(1, 1), 2)
	ws.ECS.MarkForDestruction(gone)
	ws.ECS.FlushDestroyQueue()

	p := &syncPlanner{results: []planner.Result{
		planner.ExplorerMovementPlan{AgentID: moved, From: grid.Pt(1, 2), NewTarget: grid.Pt(1, 3), IsMoving: true},
		planner.ExplorerMovementPlan{AgentID: busy, From: grid.Pt(3, 3), NewTarget: grid.Pt(3, 2), IsMoving: true},
		planner.ExplorerMovementPlan{AgentID: gone, From: grid.Pt(1, 1), NewTarget: grid.Pt(2, 1), IsMoving: true},
	}}
	rec := &recorder{}
	s := NewApplySystem(ws, p, event.NewBus(), rec, zap.NewNop())
	s.Update(tick)

	assert.Zero(t, s.Applied())
	assert.Equal(t, 2, s.Stale(), "unknown robots are not counted as stale")
	assert.Empty(t, rec.records)

	e, _ = ws.Explorers.Get(moved)
	assert.False(t, e.Moving)
	e, _ = ws.Explorers.Get(busy)
	assert.Equal(t, grid.Pt(4, 3), e.Target)
}

func TestApplyDropsMinerPlanAfterTaskChange(t *testing.T) {
	ws := newState(t, openRoom)
	id := ws.SpawnMiner(grid.Pt(2, 2), 1.5, "rock")
	m, _ := ws.Miners.Get(id)
	m.Task = robot.TaskReturningToSpawn // picked something up meanwhile

	p := &syncPlanner{results: []planner.Result{planner.MinerMovementPlan{
		AgentID:      id,
		From:         grid.Pt(2, 2),
		NewTarget:    grid.Pt(3, 2),
		IsMoving:     true,
		CurrentTask:  robot.TaskMovingToTarget,
		PreviousTask: robot.TaskIdle,
	}}}
	s := NewApplySystem(ws, p, event.NewBus(), nil, zap.NewNop())
	s.Update(tick)

	assert.Equal(t, 1, s.Stale())
	assert.Equal(t, robot.TaskReturningToSpawn, m.Task)
	assert.False(t, m.Moving)
}

func TestApplyUnloadsAtSpawn(t *testing.T) {
	ws := newState(t, openRoom)
	id := ws.SpawnMiner(grid.Pt(1, 1), 1.5, "rock")
	m, _ := ws.Miners.Get(id)
	m.Task = robot.TaskReturningToSpawn
	m.AddResource("rock_item", 3)
	m.AddResource("basalt_item", 1)

	bus := event.NewBus()
	var deposited []event.ResourcesDeposited
	event.Subscribe(bus, func(ev event.ResourcesDeposited) { deposited = append(deposited, ev) })

	p := &syncPlanner{results: []planner.Result{planner.MinerMovementPlan{
		AgentID:      id,
		From:         grid.Pt(1, 1),
		NewTarget:    grid.Pt(1, 1),
		CurrentTask:  robot.TaskIdle,
		PreviousTask: robot.TaskReturningToSpawn,
	}}}
	rec := &recorder{}
	s := NewApplySystem(ws, p, bus, rec, zap.NewNop())
	s.Update(tick)
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, robot.TaskIdle, m.Task)
	assert.Zero(t, m.Carried())
	assert.Equal(t, map[string]int{"rock_item": 3, "basalt_item": 1}, ws.Stockpile)
	assert.Equal(t, []event.ResourcesDeposited{
		{Miner: id, Kind: "rock_item", Quantity: 3},
		{Miner: id, Kind: "basalt_item", Quantity: 1},
	}, deposited)
	require.Len(t, rec.records, 1)
	assert.Equal(t, "idle", rec.records[0].(trace.PlanRecord).Task)
}

func TestApplyIgnoresPlansForUnknownKinds(t *testing.T) {
	ws := newState(t, openRoom)
	id := ws.SpawnExplorer(grid.Pt(2, 2), 2)

	// a miner plan addressed to an explorer entity
	p := &syncPlanner{results: []planner.Result{planner.MinerMovementPlan{AgentID: id, From: grid.Pt(2, 2)}}}
	s := NewApplySystem(ws, p, event.NewBus(), nil, zap.NewNop())
	s.Update(tick)
	assert.Zero(t, s.Applied())
	assert.Zero(t, s.Stale())
}
