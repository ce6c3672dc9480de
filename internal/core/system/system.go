package system

import "time"

// Phase orders systems within a tick.
type Phase int

const (
	PhaseSense    Phase = iota // 0: robots observe terrain
	PhaseDispatch              // 1: push knowledge, send planning commands
	PhaseApply                 // 2: merge plan results
	PhaseMove                  // 3: advance move timers
	PhaseCollect               // 4: mining, pickup
	PhaseEvents                // 5: deliver events emitted this tick
	PhasePersist               // 6: checkpoints
	PhaseCleanup               // 7: destroy queued entities
)

var phaseNames = [...]string{"sense", "dispatch", "apply", "move", "collect", "events", "persist", "cleanup"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) && p >= 0 {
		return phaseNames[p]
	}
	return "unknown"
}

// System is one step of the tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
