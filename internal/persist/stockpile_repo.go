package persist

import (
	"context"
	"fmt"
)

type StockpileRepo struct {
	db *DB
}

func NewStockpileRepo(db *DB) *StockpileRepo {
	return &StockpileRepo{db: db}
}

// Save upserts every stockpiled kind of colonyID.
func (r *StockpileRepo) Save(ctx context.Context, colonyID string, stock map[string]int) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("stockpile begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for kind, qty := range stock {
		if _, err := tx.Exec(ctx,
			`INSERT INTO colony_stockpile (colony_id, kind, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (colony_id, kind) DO UPDATE SET quantity = $3`,
			colonyID, kind, qty,
		); err != nil {
			return fmt.Errorf("stockpile %s: %w", kind, err)
		}
	}
	return tx.Commit(ctx)
}

// Load returns the stockpile of colonyID; empty when never saved.
func (r *StockpileRepo) Load(ctx context.Context, colonyID string) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, quantity FROM colony_stockpile WHERE colony_id = $1`, colonyID,
	)
	if err != nil {
		return nil, fmt.Errorf("load stockpile: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var kind string
		var qty int
		if err := rows.Scan(&kind, &qty); err != nil {
			return nil, fmt.Errorf("scan stockpile: %w", err)
		}
		stock[kind] = qty
	}
	return stock, rows.Err()
}
