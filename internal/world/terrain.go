package world

import (
	"github.com/redsoil/colony/internal/data"
	"github.com/redsoil/colony/internal/grid"
)

// BoundaryMaterial is reported for every cell outside the map.
const BoundaryMaterial = "bedrock"

// Deposit is one live solid cell.
type Deposit struct {
	Material  string
	Health    float64
	MaxHealth float64
}

// Terrain is the authoritative solid-cell layer. It is owned by the main
// loop and never shared with the planner.
type Terrain struct {
	width, height int
	chunkSize     int
	solids        map[grid.Pos]*Deposit
}

// NewTerrain builds the live terrain from a map. Cell health starts at the
// material strength.
func NewTerrain(m *data.TerrainMap, mats *data.MaterialTable, chunkSize int) *Terrain {
	if chunkSize <= 0 {
		chunkSize = 16
	}
	t := &Terrain{
		width:     m.Width,
		height:    m.Height,
		chunkSize: chunkSize,
		solids:    make(map[grid.Pos]*Deposit, len(m.Solids)),
	}
	for _, c := range m.Solids {
		strength := 1.0
		if mat := mats.Get(c.Material); mat != nil {
			strength = mat.Strength
		}
		t.solids[c.Pos] = &Deposit{Material: c.Material, Health: strength, MaxHealth: strength}
	}
	return t
}

func (t *Terrain) Width() int  { return t.width }
func (t *Terrain) Height() int { return t.height }

func (t *Terrain) InBounds(p grid.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < t.width && p.Y < t.height
}

// Solid returns the material of a solid cell. Cells outside the map are
// solid BoundaryMaterial.
func (t *Terrain) Solid(p grid.Pos) (string, bool) {
	if !t.InBounds(p) {
		return BoundaryMaterial, true
	}
	if d, ok := t.solids[p]; ok {
		return d.Material, true
	}
	return "", false
}

// Deposit returns the live deposit at p, or nil.
func (t *Terrain) Deposit(p grid.Pos) *Deposit {
	return t.solids[p]
}

// IsWalkable reports whether p is an in-bounds cell without a solid.
func (t *Terrain) IsWalkable(p grid.Pos) bool {
	_, solid := t.Solid(p)
	return !solid
}

// Damage removes amount health from the deposit at p and reports whether
// it was destroyed. Destroyed cells are removed immediately.
func (t *Terrain) Damage(p grid.Pos, amount float64) (destroyed bool) {
	d, ok := t.solids[p]
	if !ok {
		return false
	}
	d.Health -= amount
	if d.Health > 0 {
		return false
	}
	delete(t.solids, p)
	return true
}

// Chunk returns the chunk coordinates that contain p.
func (t *Terrain) Chunk(p grid.Pos) (int, int) {
	return grid.ChunkOf(p, t.chunkSize)
}

// SolidCount returns the number of live solid cells inside the map.
func (t *Terrain) SolidCount() int {
	return len(t.solids)
}
