package robot

import (
	"math/rand"
	"testing"

	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyAround(k *knowledge.WorldKnowledge, p grid.Pos) {
	k.MarkEmpty(p)
	for _, n := range p.Neighbors() {
		if !k.IsSolid(n) {
			k.MarkEmpty(n)
		}
	}
}

func TestExplorerHugsWallClockwise(t *testing.T) {
	k := knowledge.New()
	k.MarkSolid(grid.Pt(1, 0), "rock")
	emptyAround(k, grid.Pt(0, 0))

	e := NewExplorer(grid.Pt(0, 0), 1)
	got, changed := PlanExplorer(grid.Pt(0, 0), e, k, Options{})
	require.True(t, changed)

	assert.Equal(t, grid.Pt(0, -1), got.Target, "wall on +x, clockwise turn goes to -y")
	assert.NotEqual(t, grid.Pt(1, 0), got.Target)
	assert.True(t, got.Moving)
	assert.Zero(t, got.MoveTimer)
	assert.Equal(t, int8(1), got.FollowDirection)
	require.NotNil(t, got.Previous)
	assert.Equal(t, grid.Pt(0, 0), *got.Previous)

	again, _ := PlanExplorer(grid.Pt(0, 0), e, k, Options{})
	assert.Equal(t, got, again)
}

func TestExplorerFlipsFollowDirection(t *testing.T) {
	k := knowledge.New()
	k.MarkSolid(grid.Pt(1, 0), "rock")
	k.MarkSolid(grid.Pt(0, -1), "rock")
	emptyAround(k, grid.Pt(0, 0))

	got, changed := PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(0, 1), got.Target)
	assert.Equal(t, int8(-1), got.FollowDirection)
}

func TestExplorerWallFallback(t *testing.T) {
	k := knowledge.New()
	k.MarkSolid(grid.Pt(1, 0), "rock")
	k.MarkSolid(grid.Pt(0, -1), "rock")
	k.MarkSolid(grid.Pt(0, 1), "rock")
	emptyAround(k, grid.Pt(0, 0))

	got, changed := PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(-1, 0), got.Target)
	assert.Equal(t, int8(1), got.FollowDirection)
}

func TestExplorerAvoidsBacktracking(t *testing.T) {
	k := knowledge.New()
	for x := 0; x <= 2; x++ {
		k.MarkEmpty(grid.Pt(x, 0))
	}

	prev := grid.Pt(0, 0)
	e := NewExplorer(grid.Pt(1, 0), 1)
	e.Previous = &prev
	got, changed := PlanExplorer(grid.Pt(1, 0), e, k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(2, 0), got.Target)

	// dead end: going back is the last resort
	prev = grid.Pt(1, 0)
	e = NewExplorer(grid.Pt(2, 0), 1)
	e.Previous = &prev
	got, changed = PlanExplorer(grid.Pt(2, 0), e, k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(1, 0), got.Target)
}

func TestExplorerOpenAreaSeeksWall(t *testing.T) {
	k := knowledge.New()
	for x := -2; x <= 2; x++ {
		for y := -2; y <= 2; y++ {
			k.MarkEmpty(grid.Pt(x, y))
		}
	}
	k.MarkSolid(grid.Pt(-2, 0), "rock")

	got, changed := PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(-1, 0), got.Target)
}

func TestExplorerOpenAreaSeeksFrontier(t *testing.T) {
	k := knowledge.New()
	for _, p := range []grid.Pos{
		grid.Pt(0, 0), grid.Pt(1, 0), grid.Pt(2, 0),
		grid.Pt(1, 1), grid.Pt(1, -1), grid.Pt(0, 1),
	} {
		k.MarkEmpty(p)
	}

	got, changed := PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(0, 1), got.Target, "(1,0) is surrounded by known cells, (0,1) borders the unknown")
}

func TestExplorerFollowsQueuedFrontier(t *testing.T) {
	k := knowledge.New()
	// fully known 7x3 room with a single frontier at its west end
	for x := -3; x <= 3; x++ {
		for y := -1; y <= 1; y++ {
			k.MarkEmpty(grid.Pt(x, y))
		}
	}
	for x := -4; x <= 4; x++ {
		k.MarkDiscovered(grid.Pt(x, 2))
		k.MarkDiscovered(grid.Pt(x, -2))
	}
	k.MarkDiscovered(grid.Pt(4, 0))
	k.MarkDiscovered(grid.Pt(4, 1))
	k.MarkDiscovered(grid.Pt(4, -1))
	k.MarkDiscovered(grid.Pt(-4, 1))
	k.MarkDiscovered(grid.Pt(-4, -1))
	k.EnqueueFrontier(grid.Pt(-3, 0))
	require.True(t, k.IsFrontier(grid.Pt(-3, 0)))

	got, changed := PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), k, Options{})
	require.True(t, changed)
	assert.Equal(t, grid.Pt(-1, 0), got.Target)
}

func TestExplorerStaysWhileMovingOrBoxedIn(t *testing.T) {
	k := knowledge.New()
	emptyAround(k, grid.Pt(0, 0))

	e := NewExplorer(grid.Pt(0, 0), 1)
	e.Moving = true
	got, changed := PlanExplorer(grid.Pt(0, 0), e, k, Options{})
	assert.False(t, changed)
	assert.Equal(t, e, got)

	boxed := knowledge.New()
	boxed.MarkEmpty(grid.Pt(0, 0))
	for _, n := range grid.Pt(0, 0).Neighbors() {
		boxed.MarkSolid(n, "rock")
	}
	_, changed = PlanExplorer(grid.Pt(0, 0), NewExplorer(grid.Pt(0, 0), 1), boxed, Options{})
	assert.False(t, changed)
}

func TestExplorerIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 200; round++ {
		k := knowledge.New()
		for x := -4; x <= 4; x++ {
			for y := -4; y <= 4; y++ {
				switch rng.Intn(4) {
				case 0:
					k.MarkSolid(grid.Pt(x, y), "rock")
				case 1:
				default:
					k.MarkEmpty(grid.Pt(x, y))
				}
			}
		}
		k.MarkEmpty(grid.Pt(0, 0))

		e := NewExplorer(grid.Pt(0, 0), 1)
		if rng.Intn(2) == 0 {
			e.FollowDirection = -1
		}
		if rng.Intn(2) == 0 {
			prev := grid.Directions[rng.Intn(4)]
			e.Previous = &prev
		}

		first, c1 := PlanExplorer(grid.Pt(0, 0), e.Clone(), k.Clone(), Options{})
		second, c2 := PlanExplorer(grid.Pt(0, 0), e.Clone(), k.Clone(), Options{})
		assert.Equal(t, c1, c2)
		assert.Equal(t, first, second, "round %d", round)
		if c1 {
			assert.True(t, k.IsEmpty(first.Target))
			assert.True(t, grid.Pt(0, 0).IsAdjacent(first.Target))
		}
	}
}
