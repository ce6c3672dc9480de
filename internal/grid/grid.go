// Package grid holds the integer cell coordinates every planner works in.
package grid

import (
	"fmt"
	"math"
)

// CellSize is the number of world units (pixels) covered by one cell.
const CellSize = 64

// Pos is one discrete cell of the world grid. Y grows upwards.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Pos{X: x, Y: y}.
func Pt(x, y int) Pos { return Pos{X: x, Y: y} }

func (p Pos) Add(d Pos) Pos { return Pos{X: p.X + d.X, Y: p.Y + d.Y} }
func (p Pos) Sub(d Pos) Pos { return Pos{X: p.X - d.X, Y: p.Y - d.Y} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Directions lists the four orthogonal steps in the fixed exploration order
// +x, +y, -x, -y. Every search iterates neighbours in this order.
var Directions = [4]Pos{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
}

// Neighbors returns the four orthogonal neighbours of p in Directions order.
func (p Pos) Neighbors() [4]Pos {
	var out [4]Pos
	for i, d := range Directions {
		out[i] = p.Add(d)
	}
	return out
}

// IsAdjacent reports whether q is one orthogonal step from p.
func (p Pos) IsAdjacent(q Pos) bool {
	return Manhattan(p, q) == 1
}

// DistSq is the squared euclidean distance. Planners never take the root.
func DistSq(a, b Pos) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Manhattan is |dx| + |dy|.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Rotate turns a unit direction by 90 degrees: clockwise for sign > 0,
// counter-clockwise for sign < 0. With Y up, clockwise maps (x, y) to (y, -x).
func Rotate(d Pos, sign int8) Pos {
	if sign >= 0 {
		return Pos{X: d.Y, Y: -d.X}
	}
	return Pos{X: -d.Y, Y: d.X}
}

// DirectionIndex returns the index of d in Directions, or -1.
func DirectionIndex(d Pos) int {
	for i, dir := range Directions {
		if dir == d {
			return i
		}
	}
	return -1
}

// Less orders cells by (Y, X). Used wherever map iteration has to become
// deterministic.
func Less(a, b Pos) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// FromWorld converts continuous world coordinates (in cell units) to the
// nearest cell.
func FromWorld(x, y float64) Pos {
	return Pos{X: int(math.Round(x)), Y: int(math.Round(y))}
}

// ToWorld returns the centre of p in cell units.
func (p Pos) ToWorld() (float64, float64) {
	return float64(p.X), float64(p.Y)
}

// FromPixels converts pixel coordinates to the nearest cell.
func FromPixels(x, y float64) Pos {
	return FromWorld(x/CellSize, y/CellSize)
}

// ChunkOf returns the chunk coordinates containing p. Negative cells floor
// towards negative infinity so chunk (-1, -1) holds cells -size..-1.
func ChunkOf(p Pos, size int) (int, int) {
	return floorDiv(p.X, size), floorDiv(p.Y, size)
}

func floorDiv(v, size int) int {
	if v < 0 {
		return (v - size + 1) / size
	}
	return v / size
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
