package planner

import (
	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/robot"
)

// Command is a request from the main loop to the worker.
type Command interface {
	command()
}

// PlanExplorerMovement asks for the next step of one explorer.
type PlanExplorerMovement struct {
	AgentID   ecs.EntityID
	Position  grid.Pos
	Explorer  robot.Explorer
	DeltaTime float64
}

// PlanMinerMovement asks for the next step of one miner.
type PlanMinerMovement struct {
	AgentID   ecs.EntityID
	Position  grid.Pos
	Miner     robot.Miner
	DeltaTime float64
}

// UpdateWorldKnowledge replaces the worker's knowledge copy. Snapshot must
// not be touched by the sender afterwards.
type UpdateWorldKnowledge struct {
	Snapshot *knowledge.WorldKnowledge
}

// Shutdown stops the worker.
type Shutdown struct{}

func (PlanExplorerMovement) command() {}
func (PlanMinerMovement) command()    {}
func (UpdateWorldKnowledge) command() {}
func (Shutdown) command()             {}

// Result is a plan produced by the worker.
type Result interface {
	Agent() ecs.EntityID
}

// ExplorerMovementPlan is produced only when the explorer's plan changed.
type ExplorerMovementPlan struct {
	AgentID          ecs.EntityID
	From             grid.Pos // cell the plan was made for
	NewTarget        grid.Pos
	IsMoving         bool
	PreviousPosition *grid.Pos
	FollowDirection  int8
}

// MinerMovementPlan is produced only when the miner's plan changed.
type MinerMovementPlan struct {
	AgentID     ecs.EntityID
	From        grid.Pos
	NewTarget   grid.Pos
	IsMoving    bool
	CurrentTask robot.Task
	// PreviousTask is the task the miner had when the command was sent.
	PreviousTask robot.Task
}

func (p ExplorerMovementPlan) Agent() ecs.EntityID { return p.AgentID }
func (p MinerMovementPlan) Agent() ecs.EntityID    { return p.AgentID }
