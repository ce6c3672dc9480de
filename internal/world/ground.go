package world

import (
	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/grid"
)

// GroundItem is a dropped resource stack waiting to be picked up.
// Not persisted, exists only in memory.
type GroundItem struct {
	Kind     string
	Quantity int
	Cell     grid.Pos
}

// SpawnItem drops a stack on cell.
func (s *State) SpawnItem(cell grid.Pos, kind string, quantity int) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Items.Set(id, &GroundItem{Kind: kind, Quantity: quantity, Cell: cell})
	return id
}

// ItemsAt returns the live items lying on cell, in id order. Items already
// queued for destruction are skipped.
func (s *State) ItemsAt(cell grid.Pos) []ecs.EntityID {
	var out []ecs.EntityID
	s.Items.Each(func(id ecs.EntityID, it *GroundItem) {
		if it.Cell == cell && it.Quantity > 0 {
			out = append(out, id)
		}
	})
	return out
}
