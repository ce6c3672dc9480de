package system

import (
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/planner"
)

// Planner is the main-loop side of the planning worker. *planner.Scheduler
// implements it.
type Planner interface {
	Send(cmd planner.Command) bool
	PublishKnowledge(k *knowledge.WorldKnowledge) bool
	Drain(fn func(planner.Result)) int
}
