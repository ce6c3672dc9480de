// Package knowledge holds what the robots have observed of the terrain.
//
// A WorldKnowledge is plain data. The main loop owns the authoritative copy
// and hands Clone()d snapshots to the planning worker; nothing here locks.
package knowledge

import (
	"sort"

	"github.com/redsoil/colony/internal/grid"
	"github.com/zyedidia/generic/mapset"
)

// WorldKnowledge aggregates every cell the robots have sensed.
//
// Invariant: a cell is never both solid and empty, and discovered is a
// superset of both that never shrinks.
type WorldKnowledge struct {
	discovered mapset.Set[grid.Pos]
	solids     map[grid.Pos]string // cell → material tag
	empty      mapset.Set[grid.Pos]

	queue  []grid.Pos // exploration frontier backlog, oldest first
	queued mapset.Set[grid.Pos]
}

// Stats is a cheap summary used by log lines.
type Stats struct {
	Discovered int
	Solids     int
	Empty      int
	Frontier   int
}

func New() *WorldKnowledge {
	return &WorldKnowledge{
		discovered: mapset.New[grid.Pos](),
		solids:     make(map[grid.Pos]string, 256),
		empty:      mapset.New[grid.Pos](),
		queued:     mapset.New[grid.Pos](),
	}
}

func (k *WorldKnowledge) MarkDiscovered(p grid.Pos) {
	k.discovered.Put(p)
}

// MarkSolid records an obstacle of the given material, dropping any earlier
// empty record for p.
func (k *WorldKnowledge) MarkSolid(p grid.Pos, material string) {
	k.empty.Remove(p)
	k.solids[p] = material
	k.discovered.Put(p)
}

// MarkEmpty records a walkable cell, dropping any earlier solid record for p
// (a destroyed deposit becomes floor).
func (k *WorldKnowledge) MarkEmpty(p grid.Pos) {
	delete(k.solids, p)
	k.empty.Put(p)
	k.discovered.Put(p)
}

func (k *WorldKnowledge) IsDiscovered(p grid.Pos) bool { return k.discovered.Has(p) }
func (k *WorldKnowledge) IsEmpty(p grid.Pos) bool      { return k.empty.Has(p) }

func (k *WorldKnowledge) IsSolid(p grid.Pos) bool {
	_, ok := k.solids[p]
	return ok
}

// SolidMaterial returns the material tag of a known solid.
func (k *WorldKnowledge) SolidMaterial(p grid.Pos) (string, bool) {
	m, ok := k.solids[p]
	return m, ok
}

// IsFrontier reports whether p is known-empty and touches at least one
// undiscovered cell.
func (k *WorldKnowledge) IsFrontier(p grid.Pos) bool {
	if !k.empty.Has(p) {
		return false
	}
	for _, n := range p.Neighbors() {
		if !k.discovered.Has(n) {
			return true
		}
	}
	return false
}

// EnqueueFrontier appends p to the exploration backlog once.
func (k *WorldKnowledge) EnqueueFrontier(p grid.Pos) {
	if k.queued.Has(p) {
		return
	}
	k.queued.Put(p)
	k.queue = append(k.queue, p)
}

// PruneFrontiers drops queued cells that stopped being frontiers.
func (k *WorldKnowledge) PruneFrontiers() {
	kept := k.queue[:0]
	for _, p := range k.queue {
		if k.IsFrontier(p) {
			kept = append(kept, p)
			continue
		}
		k.queued.Remove(p)
	}
	k.queue = kept
}

// Frontiers returns a copy of the exploration backlog in insertion order.
func (k *WorldKnowledge) Frontiers() []grid.Pos {
	out := make([]grid.Pos, len(k.queue))
	copy(out, k.queue)
	return out
}

// SolidsOf lists the known solids of a material ordered by (Y, X).
func (k *WorldKnowledge) SolidsOf(material string) []grid.Pos {
	var out []grid.Pos
	for p, m := range k.solids {
		if m == material {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return grid.Less(out[i], out[j]) })
	return out
}

// EachDiscovered, EachSolid and EachEmpty iterate in unspecified order.
func (k *WorldKnowledge) EachDiscovered(fn func(grid.Pos)) { k.discovered.Each(fn) }
func (k *WorldKnowledge) EachEmpty(fn func(grid.Pos))      { k.empty.Each(fn) }

func (k *WorldKnowledge) EachSolid(fn func(grid.Pos, string)) {
	for p, m := range k.solids {
		fn(p, m)
	}
}

func (k *WorldKnowledge) Stats() Stats {
	return Stats{
		Discovered: k.discovered.Size(),
		Solids:     len(k.solids),
		Empty:      k.empty.Size(),
		Frontier:   len(k.queue),
	}
}

// Clone returns an independent deep copy, safe to hand to another goroutine.
func (k *WorldKnowledge) Clone() *WorldKnowledge {
	c := New()
	k.discovered.Each(func(p grid.Pos) { c.discovered.Put(p) })
	k.empty.Each(func(p grid.Pos) { c.empty.Put(p) })
	for p, m := range k.solids {
		c.solids[p] = m
	}
	c.queue = make([]grid.Pos, len(k.queue))
	copy(c.queue, k.queue)
	k.queued.Each(func(p grid.Pos) { c.queued.Put(p) })
	return c
}
