package robot

import (
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/pathfind"
)

// PlanExplorer decides the next cell for an explorer standing on pos.
//
// Next to a known wall the explorer keeps it on one side, turning by
// FollowDirection and flipping it when the preferred side is blocked. In the
// open it heads for a wall first, then for undiscovered cells. The result
// only depends on its inputs.
func PlanExplorer(pos grid.Pos, e Explorer, k *knowledge.WorldKnowledge, opts Options) (Explorer, bool) {
	if e.Moving {
		return e, false
	}

	accessible := accessibleCells(pos, e.Previous, k)
	if len(accessible) == 0 {
		return e, false
	}

	follow := e.FollowDirection
	if follow == 0 {
		follow = 1
	}

	var next grid.Pos
	if wall, ok := closestWall(pos, k); ok {
		next, follow = hugWall(pos, wall, follow, accessible)
	} else {
		next = openAreaStep(pos, accessible, k, opts)
	}

	prev := pos
	e.Target = next
	e.Moving = true
	e.MoveTimer = 0
	e.Previous = &prev
	e.FollowDirection = follow
	return e, true
}

// accessibleCells lists known-empty neighbours in direction order. The cell
// the explorer just left is only offered when nothing else is.
func accessibleCells(pos grid.Pos, previous *grid.Pos, k *knowledge.WorldKnowledge) []grid.Pos {
	var all, fresh []grid.Pos
	for _, n := range pos.Neighbors() {
		if !k.IsEmpty(n) {
			continue
		}
		all = append(all, n)
		if previous == nil || n != *previous {
			fresh = append(fresh, n)
		}
	}
	if len(fresh) > 0 {
		return fresh
	}
	return all
}

// closestWall returns the direction of the known solid neighbour with the
// smallest (manhattan, direction index) key.
func closestWall(pos grid.Pos, k *knowledge.WorldKnowledge) (grid.Pos, bool) {
	bestKey := -1
	var best grid.Pos
	for i, d := range grid.Directions {
		n := pos.Add(d)
		if !k.IsSolid(n) {
			continue
		}
		key := grid.Manhattan(pos, n)*len(grid.Directions) + i
		if bestKey < 0 || key < bestKey {
			bestKey, best = key, d
		}
	}
	return best, bestKey >= 0
}

func hugWall(pos, wall grid.Pos, follow int8, accessible []grid.Pos) (grid.Pos, int8) {
	if c := pos.Add(grid.Rotate(wall, follow)); contains(accessible, c) {
		return c, follow
	}
	if c := pos.Add(grid.Rotate(wall, -follow)); contains(accessible, c) {
		return c, -follow
	}
	return accessible[0], follow
}

func openAreaStep(pos grid.Pos, accessible []grid.Pos, k *knowledge.WorldKnowledge, opts Options) grid.Pos {
	for _, c := range accessible {
		if touchesSolid(c, k) {
			return c
		}
	}
	for _, c := range accessible {
		if touchesUndiscovered(c, k) {
			return c
		}
	}
	if step, ok := queuedFrontierStep(pos, accessible, k, opts); ok {
		return step
	}
	return accessible[0]
}

// queuedFrontierStep heads for the nearest backlog frontier when nothing
// around the explorer is new.
func queuedFrontierStep(pos grid.Pos, accessible []grid.Pos, k *knowledge.WorldKnowledge, opts Options) (grid.Pos, bool) {
	var target grid.Pos
	bestDist := -1
	for _, f := range k.Frontiers() {
		if f == pos || !k.IsFrontier(f) {
			continue
		}
		if d := grid.DistSq(pos, f); bestDist < 0 || d < bestDist {
			target, bestDist = f, d
		}
	}
	if bestDist < 0 {
		return grid.Pos{}, false
	}
	path := pathfind.FindPartialPath(pos, target, k, opts.PartialDepth)
	if len(path) == 0 || !contains(accessible, path[0]) {
		return grid.Pos{}, false
	}
	return path[0], true
}

func touchesSolid(p grid.Pos, k *knowledge.WorldKnowledge) bool {
	for _, n := range p.Neighbors() {
		if k.IsSolid(n) {
			return true
		}
	}
	return false
}

func touchesUndiscovered(p grid.Pos, k *knowledge.WorldKnowledge) bool {
	for _, n := range p.Neighbors() {
		if !k.IsDiscovered(n) {
			return true
		}
	}
	return false
}

func contains(cells []grid.Pos, p grid.Pos) bool {
	for _, c := range cells {
		if c == p {
			return true
		}
	}
	return false
}
