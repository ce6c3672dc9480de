// Package pathfind runs breadth-first searches over known-empty cells.
//
// Both searches expand neighbours in grid.Directions order, so a given
// knowledge snapshot always yields the same path.
package pathfind

import (
	"github.com/redsoil/colony/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

// DefaultPartialDepth bounds FindPartialPath when no depth is given.
const DefaultPartialDepth = 20

// Walkable is the read side of knowledge.WorldKnowledge the searches need.
type Walkable interface {
	IsEmpty(p grid.Pos) bool
}

// FindPath returns the shortest 4-connected path from start to goal through
// known-empty cells. The goal itself is always enterable so a robot can path
// next to (or into) a still-solid target. The path excludes start and ends
// at goal; it is nil when start == goal or when goal is unreachable.
func FindPath(start, goal grid.Pos, k Walkable) []grid.Pos {
	if start == goal {
		return nil
	}

	parent := make(map[grid.Pos]grid.Pos, 64)
	visited := mapset.New[grid.Pos]()
	visited.Put(start)
	queue := []grid.Pos{start}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, n := range cur.Neighbors() {
			if visited.Has(n) {
				continue
			}
			if n != goal && !k.IsEmpty(n) {
				continue
			}
			visited.Put(n)
			parent[n] = cur
			if n == goal {
				return walkBack(parent, start, goal)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

// FindPartialPath is a depth-bounded FindPath for goals that may not be
// reachable yet. If the goal is found the full path is returned; otherwise
// the path leads to the visited cell closest to goal (squared distance,
// earliest-enqueued on ties). Nil when no visited cell is closer than start.
func FindPartialPath(start, goal grid.Pos, k Walkable, maxDepth int) []grid.Pos {
	if start == goal {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultPartialDepth
	}

	type node struct {
		pos   grid.Pos
		depth int
	}

	parent := make(map[grid.Pos]grid.Pos, 64)
	visited := mapset.New[grid.Pos]()
	visited.Put(start)
	queue := []node{{pos: start}}

	best := start
	bestDist := grid.DistSq(start, goal)

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.depth >= maxDepth {
			continue
		}
		for _, n := range cur.pos.Neighbors() {
			if visited.Has(n) {
				continue
			}
			if n != goal && !k.IsEmpty(n) {
				continue
			}
			visited.Put(n)
			parent[n] = cur.pos
			if n == goal {
				return walkBack(parent, start, goal)
			}
			if d := grid.DistSq(n, goal); d < bestDist {
				best, bestDist = n, d
			}
			queue = append(queue, node{pos: n, depth: cur.depth + 1})
		}
	}

	if best == start {
		return nil
	}
	return walkBack(parent, start, best)
}

// walkBack rebuilds start→end (start excluded) from the parent links.
func walkBack(parent map[grid.Pos]grid.Pos, start, end grid.Pos) []grid.Pos {
	var rev []grid.Pos
	for p := end; p != start; p = parent[p] {
		rev = append(rev, p)
	}
	path := make([]grid.Pos, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// Reachable floods the known-empty region connected to start. start is
// always included.
func Reachable(start grid.Pos, k Walkable) mapset.Set[grid.Pos] {
	seen := mapset.New[grid.Pos]()
	seen.Put(start)
	queue := []grid.Pos{start}
	for head := 0; head < len(queue); head++ {
		for _, n := range queue[head].Neighbors() {
			if seen.Has(n) || !k.IsEmpty(n) {
				continue
			}
			seen.Put(n)
			queue = append(queue, n)
		}
	}
	return seen
}
