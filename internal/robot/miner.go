package robot

import (
	"sort"

	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/pathfind"
)

// PlanMiner advances the miner task machine for a miner standing on pos.
//
// Every decision is made against the snapshot only. Whether the deposit
// still exists in the live terrain is checked by the collection side when
// mining starts. Only the next step is kept; the route is recomputed on the
// following cycle.
func PlanMiner(pos grid.Pos, m Miner, k *knowledge.WorldKnowledge, opts Options) (Miner, bool) {
	if m.Moving {
		return m, false
	}

	switch m.Task {
	case TaskIdle:
		return approachDeposit(pos, m, k, opts)

	case TaskMovingToTarget:
		if adjacentDeposit(pos, m.Material, k) {
			return startMining(pos, m), true
		}
		if len(k.SolidsOf(m.Material)) == 0 {
			m.Task = TaskReturningToSpawn
			if step, ok := stepToward(pos, m.Spawn, k, opts); ok {
				m = moveTo(m, step)
			} else {
				m.Target = pos
			}
			return m, true
		}
		return approachDeposit(pos, m, k, opts)

	case TaskMining:
		return m, false

	case TaskReturningToSpawn:
		if pos == m.Spawn {
			m.Task = TaskIdle
			m.Target = pos
			return m, true
		}
		step, ok := stepToward(pos, m.Spawn, k, opts)
		if !ok {
			return m, false
		}
		return moveTo(m, step), true
	}
	return m, false
}

// approachDeposit targets the nearest deposit with a reachable side. When
// no deposit can be reached it takes a partial step towards the nearest one.
func approachDeposit(pos grid.Pos, m Miner, k *knowledge.WorldKnowledge, opts Options) (Miner, bool) {
	deposits := k.SolidsOf(m.Material)
	if len(deposits) == 0 {
		return m, false
	}
	sortByDistance(pos, deposits)

	if pos.IsAdjacent(deposits[0]) {
		return startMining(pos, m), true
	}

	reachable := pathfind.Reachable(pos, k)
	for _, dep := range deposits {
		for _, side := range approachCells(pos, dep, k) {
			if !reachable.Has(side) {
				continue
			}
			if path := pathfind.FindPath(pos, side, k); len(path) > 0 {
				m.Task = TaskMovingToTarget
				return moveTo(m, path[0]), true
			}
		}
	}

	path := pathfind.FindPartialPath(pos, deposits[0], k, opts.PartialDepth)
	if len(path) == 0 || path[0] == deposits[0] {
		return m, false
	}
	m.Task = TaskMovingToTarget
	return moveTo(m, path[0]), true
}

// stepToward returns the first cell of a full path to goal, falling back to
// a partial one.
func stepToward(pos, goal grid.Pos, k *knowledge.WorldKnowledge, opts Options) (grid.Pos, bool) {
	if path := pathfind.FindPath(pos, goal, k); len(path) > 0 {
		return path[0], true
	}
	if path := pathfind.FindPartialPath(pos, goal, k, opts.PartialDepth); len(path) > 0 {
		return path[0], true
	}
	return grid.Pos{}, false
}

// approachCells lists the known-empty sides of a deposit, closest to pos
// first.
func approachCells(pos, deposit grid.Pos, k *knowledge.WorldKnowledge) []grid.Pos {
	var sides []grid.Pos
	for _, n := range deposit.Neighbors() {
		if k.IsEmpty(n) {
			sides = append(sides, n)
		}
	}
	sort.SliceStable(sides, func(i, j int) bool {
		return grid.DistSq(pos, sides[i]) < grid.DistSq(pos, sides[j])
	})
	return sides
}

func adjacentDeposit(pos grid.Pos, material string, k *knowledge.WorldKnowledge) bool {
	for _, n := range pos.Neighbors() {
		if m, ok := k.SolidMaterial(n); ok && m == material {
			return true
		}
	}
	return false
}

func sortByDistance(pos grid.Pos, cells []grid.Pos) {
	sort.SliceStable(cells, func(i, j int) bool {
		return grid.DistSq(pos, cells[i]) < grid.DistSq(pos, cells[j])
	})
}

func startMining(pos grid.Pos, m Miner) Miner {
	m.Task = TaskMining
	m.Moving = false
	m.MoveTimer = 0
	m.Target = pos
	return m
}

func moveTo(m Miner, step grid.Pos) Miner {
	m.Target = step
	m.Moving = true
	m.MoveTimer = 0
	return m
}
