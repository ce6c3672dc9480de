package persist

import (
	"context"

	"github.com/redsoil/colony/internal/knowledge"
)

// Checkpoint saves one colony's knowledge and stockpile together.
type Checkpoint struct {
	ColonyID  string
	Knowledge *KnowledgeRepo
	Stockpile *StockpileRepo
}

func NewCheckpoint(db *DB, colonyID string) *Checkpoint {
	return &Checkpoint{
		ColonyID:  colonyID,
		Knowledge: NewKnowledgeRepo(db),
		Stockpile: NewStockpileRepo(db),
	}
}

func (c *Checkpoint) Save(ctx context.Context, k *knowledge.WorldKnowledge, stock map[string]int) error {
	if err := c.Knowledge.Save(ctx, c.ColonyID, k); err != nil {
		return err
	}
	return c.Stockpile.Save(ctx, c.ColonyID, stock)
}
