package system

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/core/event"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/scripting"
	"github.com/redsoil/colony/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seam = `
XXXXXXX
X..#..X
XXXXXXX
`

func miningMiner(t *testing.T, ws *world.State, at grid.Pos, material string) (ecs.EntityID, *robot.Miner) {
	t.Helper()
	id := ws.SpawnMiner(at, 1.5, material)
	m, ok := ws.Miners.Get(id)
	require.True(t, ok)
	m.Task = robot.TaskMining
	return id, m
}

func TestCollectMinesDeposit(t *testing.T) {
	ws := newState(t, seam)
	revealAll(ws)
	id, m := miningMiner(t, ws, grid.Pt(2, 1), "rock")

	bus := event.NewBus()
	var mined []event.DepositMined
	var updated []event.TerrainUpdated
	event.Subscribe(bus, func(ev event.DepositMined) { mined = append(mined, ev) })
	event.Subscribe(bus, func(ev event.TerrainUpdated) { updated = append(updated, ev) })

	s := NewCollectSystem(ws, bus, nil, rand.New(rand.NewSource(1)), zap.NewNop())
	s.Update(time.Second)
	dep := ws.Terrain.Deposit(grid.Pt(3, 1))
	require.NotNil(t, dep)
	assert.InDelta(t, 1.0, dep.Health, 1e-9)
	assert.Equal(t, robot.TaskMining, m.Task)

	s.Update(time.Second)
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.True(t, ws.Terrain.IsWalkable(grid.Pt(3, 1)))
	assert.True(t, ws.Knowledge.IsEmpty(grid.Pt(3, 1)))

	require.Len(t, mined, 1)
	assert.Equal(t, id, mined[0].Miner)
	assert.Equal(t, grid.Pt(3, 1), mined[0].Cell)
	assert.Equal(t, "rock", mined[0].Material)
	assert.GreaterOrEqual(t, mined[0].Drops, 1)
	assert.LessOrEqual(t, mined[0].Drops, 3)
	assert.Equal(t, []event.TerrainUpdated{{ChunkX: 0, ChunkY: 0}}, updated)

	items := ws.ItemsAt(grid.Pt(3, 1))
	require.Len(t, items, 1)
	it, _ := ws.Items.Get(items[0])
	assert.Equal(t, "rock_item", it.Kind)
	assert.Equal(t, mined[0].Drops, it.Quantity)

	assert.Equal(t, robot.TaskIdle, m.Task)
	assert.True(t, m.Moving)
	assert.Equal(t, grid.Pt(3, 1), m.Target)
	tr, _ := ws.Transforms.Get(id)
	assert.Equal(t, grid.Pt(2, 1), tr.Origin)
}

func TestCollectPicksUpDrops(t *testing.T) {
	ws := newState(t, seam)
	id := ws.SpawnMiner(grid.Pt(1, 1), 1.5, "rock")
	m, _ := ws.Miners.Get(id)
	rock := ws.SpawnItem(grid.Pt(1, 1), "rock_item", 2)
	basalt := ws.SpawnItem(grid.Pt(1, 1), "basalt_item", 1)
	ws.SpawnItem(grid.Pt(2, 1), "rock_item", 5)

	bus := event.NewBus()
	var collected []event.ItemCollected
	event.Subscribe(bus, func(ev event.ItemCollected) { collected = append(collected, ev) })

	NewCollectSystem(ws, bus, nil, nil, zap.NewNop()).Update(tick)
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Equal(t, []robot.Resource{{Kind: "rock_item", Quantity: 2}}, m.Collected)
	assert.Equal(t, robot.TaskReturningToSpawn, m.Task)
	assert.Equal(t, []event.ItemCollected{{Miner: id, Kind: "rock_item", Quantity: 2}}, collected)

	it, _ := ws.Items.Get(rock)
	assert.Zero(t, it.Quantity)
	assert.Equal(t, 1, ws.ECS.Pending())
	ws.ECS.FlushDestroyQueue()
	assert.False(t, ws.ECS.Alive(rock))
	assert.True(t, ws.ECS.Alive(basalt), "other kinds stay on the ground")
}

func TestCollectSkipsMovingMiners(t *testing.T) {
	ws := newState(t, seam)
	_, m := miningMiner(t, ws, grid.Pt(2, 1), "rock")
	m.Moving = true
	ws.SpawnItem(grid.Pt(2, 1), "rock_item", 1)

	NewCollectSystem(ws, event.NewBus(), nil, nil, zap.NewNop()).Update(10 * time.Second)

	assert.InDelta(t, 2.0, ws.Terrain.Deposit(grid.Pt(3, 1)).Health, 1e-9)
	assert.Empty(t, m.Collected)
}

func TestCollectDepositGone(t *testing.T) {
	ws := newState(t, seam)
	_, m := miningMiner(t, ws, grid.Pt(1, 1), "rock")

	NewCollectSystem(ws, event.NewBus(), nil, nil, zap.NewNop()).Update(tick)
	assert.Equal(t, robot.TaskIdle, m.Task)
	assert.False(t, m.Moving)
}

func TestCollectRefusesUnmineable(t *testing.T) {
	ws := newState(t, seam)
	_, m := miningMiner(t, ws, grid.Pt(1, 1), "bedrock")

	NewCollectSystem(ws, event.NewBus(), nil, nil, zap.NewNop()).Update(time.Hour)
	assert.Equal(t, robot.TaskIdle, m.Task)
	assert.NotNil(t, ws.Terrain.Deposit(grid.Pt(0, 1)))
}

func TestCollectUsesScriptedPower(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mining"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mining", "power.lua"), []byte(`
function calc_mining_power(ctx) return ctx.base_power * 10 end
function calc_mining_drop(ctx) return 4 end
`), 0o644))
	lua, err := scripting.NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lua.Close)

	ws := newState(t, seam)
	_, m := miningMiner(t, ws, grid.Pt(2, 1), "rock")
	NewCollectSystem(ws, event.NewBus(), lua, nil, zap.NewNop()).Update(300 * time.Millisecond)

	assert.Nil(t, ws.Terrain.Deposit(grid.Pt(3, 1)), "10 power for 0.3s breaks strength 2")
	assert.True(t, m.Moving)
	items := ws.ItemsAt(grid.Pt(3, 1))
	require.Len(t, items, 1)
	it, _ := ws.Items.Get(items[0])
	assert.Equal(t, 4, it.Quantity)
}
