// Package robot holds agent state and the per-agent planning decisions.
//
// Planners are pure: they take a value copy of the agent, its cell and a
// knowledge snapshot, and return the updated copy plus whether anything
// changed. They never touch simulation entities.
package robot

import "github.com/redsoil/colony/internal/grid"

// Options tunes the searches planners are allowed to run.
type Options struct {
	PartialDepth int // bound for partial paths, 0 = pathfind.DefaultPartialDepth
}

// Task is the miner state machine.
type Task int

const (
	TaskIdle Task = iota
	TaskMovingToTarget
	TaskMining
	TaskReturningToSpawn
)

func (t Task) String() string {
	switch t {
	case TaskIdle:
		return "idle"
	case TaskMovingToTarget:
		return "moving_to_target"
	case TaskMining:
		return "mining"
	case TaskReturningToSpawn:
		return "returning_to_spawn"
	}
	return "unknown"
}

// Explorer is the wall-following scout.
type Explorer struct {
	Speed           float64   // cells per second
	Target          grid.Pos  // cell being moved into
	Moving          bool      // true while interpolating towards Target
	MoveTimer       float64   // seconds spent on the current step
	Previous        *grid.Pos // last cell left, nil before the first step
	FollowDirection int8      // +1 clockwise, -1 counter-clockwise
}

func NewExplorer(at grid.Pos, speed float64) Explorer {
	return Explorer{Speed: speed, Target: at, FollowDirection: 1}
}

// StepDuration is the time one cell takes at the explorer's speed.
func (e Explorer) StepDuration() float64 { return stepDuration(e.Speed) }

// Clone copies the explorer without sharing Previous.
func (e Explorer) Clone() Explorer {
	if e.Previous != nil {
		p := *e.Previous
		e.Previous = &p
	}
	return e
}

// Resource is one kind of harvested item and how many are carried.
type Resource struct {
	Kind     string
	Quantity int
}

// Miner harvests one material and carries the drops back to its spawn cell.
type Miner struct {
	Speed       float64
	Target      grid.Pos
	Moving      bool
	MoveTimer   float64
	Task        Task
	Spawn       grid.Pos   // home cell, resources are unloaded here
	Collected   []Resource // picked up since the last unload
	Material    string     // deposit tag to harvest
	MiningPower float64    // deposit health removed per second
}

func NewMiner(at grid.Pos, speed float64, material string) Miner {
	return Miner{
		Speed:       speed,
		Target:      at,
		Spawn:       at,
		Material:    material,
		MiningPower: 1,
	}
}

func (m Miner) StepDuration() float64 { return stepDuration(m.Speed) }

// Carried sums the quantities in Collected.
func (m Miner) Carried() int {
	n := 0
	for _, r := range m.Collected {
		n += r.Quantity
	}
	return n
}

// AddResource merges qty of kind into Collected.
func (m *Miner) AddResource(kind string, qty int) {
	for i := range m.Collected {
		if m.Collected[i].Kind == kind {
			m.Collected[i].Quantity += qty
			return
		}
	}
	m.Collected = append(m.Collected, Resource{Kind: kind, Quantity: qty})
}

// Clone copies the miner including its Collected slice.
func (m Miner) Clone() Miner {
	if m.Collected != nil {
		m.Collected = append([]Resource(nil), m.Collected...)
	}
	return m
}

func stepDuration(speed float64) float64 {
	if speed <= 0 {
		return 1
	}
	return 1 / speed
}
