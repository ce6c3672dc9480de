package planner

import (
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/robot"
)

// Plan runs the planner matching cmd against k. It returns a result only
// when the agent should move or change task. Non-plan commands yield
// nothing.
func Plan(cmd Command, k *knowledge.WorldKnowledge, opts robot.Options) (Result, bool) {
	switch c := cmd.(type) {
	case PlanExplorerMovement:
		next, changed := robot.PlanExplorer(c.Position, c.Explorer, k, opts)
		if !changed {
			return nil, false
		}
		return ExplorerMovementPlan{
			AgentID:          c.AgentID,
			From:             c.Position,
			NewTarget:        next.Target,
			IsMoving:         next.Moving,
			PreviousPosition: next.Previous,
			FollowDirection:  next.FollowDirection,
		}, true

	case PlanMinerMovement:
		next, changed := robot.PlanMiner(c.Position, c.Miner, k, opts)
		if !changed {
			return nil, false
		}
		return MinerMovementPlan{
			AgentID:      c.AgentID,
			From:         c.Position,
			NewTarget:    next.Target,
			IsMoving:     next.Moving,
			CurrentTask:  next.Task,
			PreviousTask: c.Miner.Task,
		}, true
	}
	return nil, false
}
