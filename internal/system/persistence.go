package system

import (
	"context"
	"time"

	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/world"
	"go.uber.org/zap"
)

// Saver stores a colony checkpoint. *persist.Checkpoint implements it.
type Saver interface {
	Save(ctx context.Context, k *knowledge.WorldKnowledge, stock map[string]int) error
}

// PersistenceSystem periodically checkpoints the colony knowledge and
// stockpile. Phase 6 (Persist).
type PersistenceSystem struct {
	world     *world.State
	saver     Saver
	log       *zap.Logger
	tickCount int
	interval  int // checkpoint every N ticks
	timeout   time.Duration

	last  knowledge.Stats
	stock int
	saves int
}

func NewPersistenceSystem(ws *world.State, saver Saver, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		saver:    saver,
		log:      log,
		interval: max(intervalTicks, 1),
		timeout:  5 * time.Second,
		stock:    -1,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if !s.dirty() {
		return
	}
	s.save()
}

// SaveNow writes a checkpoint regardless of changes. Called on shutdown.
func (s *PersistenceSystem) SaveNow() {
	s.save()
}

// Saves returns the number of successful checkpoints.
func (s *PersistenceSystem) Saves() int { return s.saves }

// dirty reports whether knowledge or the stockpile changed since the last
// checkpoint. Knowledge only grows, so its counters are enough.
func (s *PersistenceSystem) dirty() bool {
	return s.world.Knowledge.Stats() != s.last || s.stockTotal() != s.stock
}

func (s *PersistenceSystem) stockTotal() int {
	n := 0
	for _, q := range s.world.Stockpile {
		n += q
	}
	return n
}

func (s *PersistenceSystem) save() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	stats := s.world.Knowledge.Stats()
	if err := s.saver.Save(ctx, s.world.Knowledge, s.world.Stockpile); err != nil {
		s.log.Error("checkpoint failed", zap.Error(err))
		return
	}
	s.last = stats
	s.stock = s.stockTotal()
	s.saves++
	s.log.Debug("checkpoint saved",
		zap.Int("discovered", stats.Discovered),
		zap.Int("stockpile", s.stock),
		zap.Duration("took", time.Since(start)))
}
