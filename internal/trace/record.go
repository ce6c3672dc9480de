package trace

import "github.com/redsoil/colony/internal/grid"

// PlanRecord is one applied planner decision.
type PlanRecord struct {
	Tick   uint64   `json:"tick"`
	Agent  string   `json:"agent"`
	Kind   string   `json:"kind"` // "explorer" or "miner"
	From   grid.Pos `json:"from"`
	Target grid.Pos `json:"target"`
	Moving bool     `json:"moving"`
	Task   string   `json:"task,omitempty"`
	Follow int8     `json:"follow,omitempty"`
}

// Recorder is the sink the simulation writes plan records to.
type Recorder interface {
	Write(v any) error
}
