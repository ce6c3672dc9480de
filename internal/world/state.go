package world

import (
	"sort"

	"github.com/redsoil/colony/internal/core/ecs"
	"github.com/redsoil/colony/internal/data"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/robot"
)

// spawnSearchRadius bounds the ring search for a free spawn cell.
const spawnSearchRadius = 20

// Transform is a robot's continuous position in cell units. Origin is the
// cell the current move started from.
type Transform struct {
	X, Y   float64
	Origin grid.Pos
}

// Cell returns the cell the robot is currently in.
func (t *Transform) Cell() grid.Pos {
	return grid.FromWorld(t.X, t.Y)
}

// Place snaps the transform onto p.
func (t *Transform) Place(p grid.Pos) {
	t.X, t.Y = p.ToWorld()
	t.Origin = p
}

// State is the simulation state owned by the main loop goroutine.
// Accessed only from that goroutine, no locks.
type State struct {
	ECS *ecs.World

	Transforms *ecs.Store[Transform]
	Explorers  *ecs.Store[robot.Explorer]
	Miners     *ecs.Store[robot.Miner]
	Items      *ecs.Store[GroundItem]

	Terrain   *Terrain
	Materials *data.MaterialTable

	// Knowledge is the main-thread copy; the planner only ever sees clones.
	Knowledge *knowledge.WorldKnowledge

	// Stockpile counts resources unloaded at spawn, by item kind.
	Stockpile map[string]int
}

func NewState(terrain *Terrain, mats *data.MaterialTable) *State {
	w := ecs.NewWorld()
	s := &State{
		ECS:        w,
		Transforms: ecs.NewStore[Transform](),
		Explorers:  ecs.NewStore[robot.Explorer](),
		Miners:     ecs.NewStore[robot.Miner](),
		Items:      ecs.NewStore[GroundItem](),
		Terrain:    terrain,
		Materials:  mats,
		Knowledge:  knowledge.New(),
		Stockpile:  make(map[string]int),
	}
	w.Register(s.Transforms)
	w.Register(s.Explorers)
	w.Register(s.Miners)
	w.Register(s.Items)
	return s
}

// FindSpawnCell searches square rings of growing radius around center for a
// walkable cell. Rings are scanned column by column, lowest x first.
func (s *State) FindSpawnCell(center grid.Pos) (grid.Pos, bool) {
	for r := 0; r < spawnSearchRadius; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				p := center.Add(grid.Pt(dx, dy))
				if s.Terrain.IsWalkable(p) {
					return p, true
				}
			}
		}
	}
	return center, false
}

func (s *State) SpawnExplorer(at grid.Pos, speed float64) ecs.EntityID {
	id := s.ECS.CreateEntity()
	tr := &Transform{}
	tr.Place(at)
	s.Transforms.Set(id, tr)
	e := robot.NewExplorer(at, speed)
	s.Explorers.Set(id, &e)
	return id
}

func (s *State) SpawnMiner(at grid.Pos, speed float64, material string) ecs.EntityID {
	id := s.ECS.CreateEntity()
	tr := &Transform{}
	tr.Place(at)
	s.Transforms.Set(id, tr)
	m := robot.NewMiner(at, speed, material)
	s.Miners.Set(id, &m)
	return id
}

// Cell returns the current cell of an entity with a transform.
func (s *State) Cell(id ecs.EntityID) (grid.Pos, bool) {
	tr, ok := s.Transforms.Get(id)
	if !ok {
		return grid.Pos{}, false
	}
	return tr.Cell(), true
}

// Unload moves everything a miner carries into the stockpile and returns
// what was moved.
func (s *State) Unload(m *robot.Miner) []robot.Resource {
	moved := m.Collected
	for _, r := range moved {
		s.Stockpile[r.Kind] += r.Quantity
	}
	m.Collected = nil
	return moved
}

// StockpileKinds returns the stockpiled kinds in name order.
func (s *State) StockpileKinds() []string {
	kinds := make([]string, 0, len(s.Stockpile))
	for k := range s.Stockpile {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RestoreKnowledge installs knowledge loaded from a checkpoint. Deposits
// the checkpoint already saw mined out are removed from the live terrain
// again, so the two layers agree. Returns the number of cells cleared.
func (s *State) RestoreKnowledge(k *knowledge.WorldKnowledge) int {
	cleared := 0
	k.EachEmpty(func(p grid.Pos) {
		if d := s.Terrain.Deposit(p); d != nil && s.Terrain.Damage(p, d.Health) {
			cleared++
		}
	})
	s.Knowledge = k
	return cleared
}
