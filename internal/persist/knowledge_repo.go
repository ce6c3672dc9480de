package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
)

// ErrNoCheckpoint is returned by Load when a colony was never saved.
var ErrNoCheckpoint = errors.New("no checkpoint")

// Cell states stored in colony_cells.state.
const (
	cellSeen  int16 = 0
	cellEmpty int16 = 1
	cellSolid int16 = 2
)

type KnowledgeRepo struct {
	db *DB
}

func NewKnowledgeRepo(db *DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Save replaces the stored knowledge of colonyID with k in one transaction.
func (r *KnowledgeRepo) Save(ctx context.Context, colonyID string, k *knowledge.WorldKnowledge) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("knowledge begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"colony_cells", "colony_frontiers"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE colony_id = $1`, colonyID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"colony_cells"},
		[]string{"colony_id", "x", "y", "state", "material"},
		pgx.CopyFromRows(cellRows(colonyID, k)),
	); err != nil {
		return fmt.Errorf("copy cells: %w", err)
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"colony_frontiers"},
		[]string{"colony_id", "seq", "x", "y"},
		pgx.CopyFromRows(frontierRows(colonyID, k)),
	); err != nil {
		return fmt.Errorf("copy frontiers: %w", err)
	}

	st := k.Stats()
	if _, err := tx.Exec(ctx,
		`INSERT INTO colony_checkpoints (colony_id, saved_at, discovered, solids, empty)
		 VALUES ($1, NOW(), $2, $3, $4)
		 ON CONFLICT (colony_id) DO UPDATE
		 SET saved_at = NOW(), discovered = $2, solids = $3, empty = $4`,
		colonyID, st.Discovered, st.Solids, st.Empty,
	); err != nil {
		return fmt.Errorf("checkpoint row: %w", err)
	}

	return tx.Commit(ctx)
}

// Load rebuilds the stored knowledge of colonyID. It returns ErrNoCheckpoint
// when nothing was saved yet.
func (r *KnowledgeRepo) Load(ctx context.Context, colonyID string) (*knowledge.WorldKnowledge, error) {
	var discovered int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT discovered FROM colony_checkpoints WHERE colony_id = $1`, colonyID,
	).Scan(&discovered)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	k := knowledge.New()
	rows, err := r.db.Pool.Query(ctx,
		`SELECT x, y, state, material FROM colony_cells WHERE colony_id = $1`, colonyID,
	)
	if err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	for rows.Next() {
		var x, y int
		var state int16
		var material string
		if err := rows.Scan(&x, &y, &state, &material); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		if err := restoreCell(k, grid.Pt(x, y), state, material); err != nil {
			rows.Close()
			return nil, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT x, y FROM colony_frontiers WHERE colony_id = $1 ORDER BY seq`, colonyID,
	)
	if err != nil {
		return nil, fmt.Errorf("load frontiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var x, y int
		if err := rows.Scan(&x, &y); err != nil {
			return nil, fmt.Errorf("scan frontier: %w", err)
		}
		k.EnqueueFrontier(grid.Pt(x, y))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load frontiers: %w", err)
	}
	return k, nil
}

// cellRows flattens k into colony_cells rows, ordered by (y, x).
func cellRows(colonyID string, k *knowledge.WorldKnowledge) [][]any {
	var cells []grid.Pos
	k.EachDiscovered(func(p grid.Pos) { cells = append(cells, p) })
	sort.Slice(cells, func(i, j int) bool { return grid.Less(cells[i], cells[j]) })

	rows := make([][]any, 0, len(cells))
	for _, p := range cells {
		state, material := cellSeen, ""
		if m, ok := k.SolidMaterial(p); ok {
			state, material = cellSolid, m
		} else if k.IsEmpty(p) {
			state = cellEmpty
		}
		rows = append(rows, []any{colonyID, p.X, p.Y, state, material})
	}
	return rows
}

func frontierRows(colonyID string, k *knowledge.WorldKnowledge) [][]any {
	frontiers := k.Frontiers()
	rows := make([][]any, 0, len(frontiers))
	for i, p := range frontiers {
		rows = append(rows, []any{colonyID, i, p.X, p.Y})
	}
	return rows
}

func restoreCell(k *knowledge.WorldKnowledge, p grid.Pos, state int16, material string) error {
	switch state {
	case cellSeen:
		k.MarkDiscovered(p)
	case cellEmpty:
		k.MarkEmpty(p)
	case cellSolid:
		k.MarkSolid(p, material)
	default:
		return fmt.Errorf("cell %s: unknown state %d", p, state)
	}
	return nil
}
