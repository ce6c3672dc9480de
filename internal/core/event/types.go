package event

import (
	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/grid"
)

// TerrainUpdated reports that solid terrain inside a chunk changed.
type TerrainUpdated struct {
	ChunkX, ChunkY int
}

// DepositMined is emitted when a deposit cell is destroyed.
type DepositMined struct {
	Miner    ecs.EntityID
	Cell     grid.Pos
	Material string
	Drops    int
}

// ItemCollected is emitted when a miner picks up a ground item.
type ItemCollected struct {
	Miner    ecs.EntityID
	Kind     string
	Quantity int
}

// ResourcesDeposited is emitted when a miner unloads at its spawn.
type ResourcesDeposited struct {
	Miner    ecs.EntityID
	Kind     string
	Quantity int
}
