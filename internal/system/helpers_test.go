package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/data"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/planner"
	"github.com/redsoil/colony/internal/robot"
	"github.com/redsoil/colony/internal/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tick = 100 * time.Millisecond

const testMaterials = `
materials:
  - name: rock
    glyph: "#"
    strength: 2
    drop_min: 1
    drop_max: 3
  - name: basalt
    glyph: "B"
    strength: 3
    drop_min: 1
    drop_max: 1
  - name: bedrock
    glyph: "X"
    strength: 1000
    mineable: false
`

func newState(t *testing.T, rows string) *world.State {
	t.Helper()
	mats, err := data.ParseMaterialTable([]byte(testMaterials))
	require.NoError(t, err)
	m, err := data.ParseTerrainMap([]byte(rows), mats)
	require.NoError(t, err)
	return world.NewState(world.NewTerrain(m, mats, 4), mats)
}

// revealAll copies the whole live terrain into the main knowledge.
func revealAll(ws *world.State) {
	for x := 0; x < ws.Terrain.Width(); x++ {
		for y := 0; y < ws.Terrain.Height(); y++ {
			p := grid.Pt(x, y)
			if mat, solid := ws.Terrain.Solid(p); solid {
				ws.Knowledge.MarkSolid(p, mat)
			} else {
				ws.Knowledge.MarkEmpty(p)
			}
		}
	}
}

// syncPlanner plans every command on the calling goroutine, against the
// last published snapshot.
type syncPlanner struct {
	k       *knowledge.WorldKnowledge
	results []planner.Result
	full    bool // reject everything
	sent    int
}

func (p *syncPlanner) Send(cmd planner.Command) bool {
	if p.full {
		return false
	}
	p.sent++
	if p.k == nil {
		return true
	}
	if r, ok := planner.Plan(cmd, p.k, robot.Options{}); ok {
		p.results = append(p.results, r)
	}
	return true
}

func (p *syncPlanner) PublishKnowledge(k *knowledge.WorldKnowledge) bool {
	if p.full {
		return false
	}
	p.k = k.Clone()
	return true
}

func (p *syncPlanner) Drain(fn func(planner.Result)) int {
	n := len(p.results)
	for _, r := range p.results {
		fn(r)
	}
	p.results = p.results[:0]
	return n
}

// recorder keeps every traced value.
type recorder struct {
	records []any
}

func (r *recorder) Write(v any) error {
	r.records = append(r.records, v)
	return nil
}

// colony wires the tick systems the way the server does, minus
// persistence.
type colony struct {
	ws      *world.State
	bus     *event.Bus
	planner *syncPlanner
	runner  *coresys.Runner
	apply   *ApplySystem
	rec     *recorder
}

func newColony(t *testing.T, rows string) *colony {
	t.Helper()
	ws := newState(t, rows)
	bus := event.NewBus()
	p := &syncPlanner{}
	rec := &recorder{}
	log := zap.NewNop()

	c := &colony{ws: ws, bus: bus, planner: p, runner: coresys.NewRunner(), rec: rec}
	c.apply = NewApplySystem(ws, p, bus, rec, log)
	c.runner.Register(NewSenseSystem(ws, 2))
	c.runner.Register(NewKnowledgePushSystem(ws, p, bus, 10, log))
	c.runner.Register(NewDispatchSystem(ws, p))
	c.runner.Register(c.apply)
	c.runner.Register(NewMovementSystem(ws))
	c.runner.Register(NewCollectSystem(ws, bus, nil, rand.New(rand.NewSource(7)), log))
	c.runner.Register(NewEventDispatchSystem(bus))
	c.runner.Register(NewCleanupSystem(ws.ECS))
	return c
}

func (c *colony) run(ticks int) {
	for i := 0; i < ticks; i++ {
		c.runner.Tick(tick)
	}
}
