package persist

import (
	"io/fs"
	"testing"

	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellRowsRoundTrip(t *testing.T) {
	k := knowledge.New()
	k.MarkEmpty(grid.Pt(0, 0))
	k.MarkEmpty(grid.Pt(1, 0))
	k.MarkSolid(grid.Pt(2, 0), "basalt")
	k.MarkDiscovered(grid.Pt(0, 1))
	k.EnqueueFrontier(grid.Pt(1, 0))
	k.EnqueueFrontier(grid.Pt(0, 0))

	rows := cellRows("c1", k)
	require.Len(t, rows, 4)
	assert.Equal(t, []any{"c1", 0, 0, cellEmpty, ""}, rows[0])
	assert.Equal(t, []any{"c1", 2, 0, cellSolid, "basalt"}, rows[2])
	assert.Equal(t, []any{"c1", 0, 1, cellSeen, ""}, rows[3])

	fr := frontierRows("c1", k)
	assert.Equal(t, [][]any{{"c1", 0, 1, 0}, {"c1", 1, 0, 0}}, fr)

	back := knowledge.New()
	for _, r := range rows {
		require.NoError(t, restoreCell(back, grid.Pt(r[1].(int), r[2].(int)), r[3].(int16), r[4].(string)))
	}
	for _, r := range fr {
		back.EnqueueFrontier(grid.Pt(r[2].(int), r[3].(int)))
	}
	assert.Equal(t, k.Stats(), back.Stats())
	assert.Equal(t, k.Frontiers(), back.Frontiers())
	mat, ok := back.SolidMaterial(grid.Pt(2, 0))
	assert.True(t, ok)
	assert.Equal(t, "basalt", mat)
	assert.True(t, back.IsDiscovered(grid.Pt(0, 1)))
	assert.False(t, back.IsEmpty(grid.Pt(0, 1)))
}

func TestRestoreCellRejectsUnknownState(t *testing.T) {
	assert.Error(t, restoreCell(knowledge.New(), grid.Pt(0, 0), 9, ""))
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/00001_knowledge.sql", "migrations/00002_stockpile.sql"}, names)

	for _, n := range names {
		body, err := fs.ReadFile(migrations, n)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up")
		assert.Contains(t, string(body), "-- +goose Down")
	}
}
