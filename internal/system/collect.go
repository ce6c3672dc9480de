package system

import (
	"math/rand"
	"time"

	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/scripting"
	"github.com/redsoil/colony/internal/world"
	"go.uber.org/zap"
)

// CollectSystem works deposits for mining miners and picks up drops under
// standing miners. It is the only place live terrain is consulted for
// mining. Phase 4 (Collect).
type CollectSystem struct {
	world *world.State
	bus   *event.Bus
	lua   *scripting.Engine // nil uses the Go defaults
	rng   *rand.Rand
	log   *zap.Logger
}

func NewCollectSystem(ws *world.State, bus *event.Bus, lua *scripting.Engine, rng *rand.Rand, log *zap.Logger) *CollectSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &CollectSystem{world: ws, bus: bus, lua: lua, rng: rng, log: log}
}

func (s *CollectSystem) Phase() coresys.Phase { return coresys.PhaseCollect }

func (s *CollectSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	s.world.Miners.Each(func(id ecs.EntityID, m *robot.Miner) {
		if m.Moving {
			return
		}
		tr, ok := s.world.Transforms.Get(id)
		if !ok {
			return
		}
		cell := tr.Cell()
		if m.Task == robot.TaskMining {
			s.mine(id, m, tr, cell, secs)
		}
		if !m.Moving {
			s.pickup(id, m, cell)
		}
	})
}

// mine works the first live deposit of the miner's material next to cell.
func (s *CollectSystem) mine(id ecs.EntityID, m *robot.Miner, tr *world.Transform, cell grid.Pos, secs float64) {
	var target grid.Pos
	var dep *world.Deposit
	for _, n := range cell.Neighbors() {
		if d := s.world.Terrain.Deposit(n); d != nil && d.Material == m.Material {
			target, dep = n, d
			break
		}
	}
	if dep == nil {
		// gone in the meantime, the planner picks a new one
		m.Task = robot.TaskIdle
		return
	}

	mat := s.world.Materials.Get(dep.Material)
	if mat != nil && !mat.IsMineable() {
		m.Task = robot.TaskIdle
		return
	}

	power := m.MiningPower
	if s.lua != nil {
		power = s.lua.CalcMiningPower(scripting.PowerContext{
			Material:  dep.Material,
			Strength:  dep.MaxHealth,
			BasePower: m.MiningPower,
		})
	}
	if !s.world.Terrain.Damage(target, power*secs) {
		return
	}

	s.world.Knowledge.MarkEmpty(target)
	drops := 0
	if mat != nil {
		drops = s.dropCount(dep, mat.DropMin, mat.DropMax)
		if drops > 0 {
			s.world.SpawnItem(target, mat.DropItem, drops)
		}
	}

	cx, cy := s.world.Terrain.Chunk(target)
	event.Emit(s.bus, event.TerrainUpdated{ChunkX: cx, ChunkY: cy})
	event.Emit(s.bus, event.DepositMined{Miner: id, Cell: target, Material: dep.Material, Drops: drops})

	// step onto the freed cell; the pickup fires on arrival
	m.Task = robot.TaskIdle
	m.Target = target
	m.Moving = true
	m.MoveTimer = 0
	tr.Origin = cell
}

func (s *CollectSystem) dropCount(dep *world.Deposit, lo, hi int) int {
	ctx := scripting.DropContext{
		Material: dep.Material,
		Strength: dep.MaxHealth,
		DropMin:  lo,
		DropMax:  hi,
		Roll:     s.rng.Float64(),
	}
	if s.lua != nil {
		return s.lua.CalcMiningDrop(ctx)
	}
	return scripting.DefaultMiningDrop(ctx)
}

// pickup collects every stack of the miner's drop kind lying on cell.
func (s *CollectSystem) pickup(id ecs.EntityID, m *robot.Miner, cell grid.Pos) {
	kind := m.Material + "_item"
	if mat := s.world.Materials.Get(m.Material); mat != nil {
		kind = mat.DropItem
	}
	picked := false
	for _, itemID := range s.world.ItemsAt(cell) {
		it, _ := s.world.Items.Get(itemID)
		if it.Kind != kind {
			continue
		}
		m.AddResource(it.Kind, it.Quantity)
		event.Emit(s.bus, event.ItemCollected{Miner: id, Kind: it.Kind, Quantity: it.Quantity})
		it.Quantity = 0
		s.world.ECS.MarkForDestruction(itemID)
		picked = true
	}
	if picked && m.Task == robot.TaskIdle {
		m.Task = robot.TaskReturningToSpawn
		s.log.Debug("miner heading home", zap.Stringer("miner", id), zap.Int("carried", m.Carried()))
	}
}
