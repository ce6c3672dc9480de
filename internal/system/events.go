package system

import (
	"time"

	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"go.uber.org/zap"
)

// EventDispatchSystem makes the events emitted so far visible and delivers
// them. Handlers that emit again are served on the next tick.
// Phase 5 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeLogging reports colony progress events on log.
func SubscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.DepositMined) {
		log.Info("deposit mined",
			zap.Stringer("miner", ev.Miner),
			zap.Stringer("cell", ev.Cell),
			zap.String("material", ev.Material),
			zap.Int("drops", ev.Drops))
	})
	event.Subscribe(bus, func(ev event.ItemCollected) {
		log.Debug("item collected",
			zap.Stringer("miner", ev.Miner),
			zap.String("kind", ev.Kind),
			zap.Int("quantity", ev.Quantity))
	})
	event.Subscribe(bus, func(ev event.ResourcesDeposited) {
		log.Info("resources deposited",
			zap.Stringer("miner", ev.Miner),
			zap.String("kind", ev.Kind),
			zap.Int("quantity", ev.Quantity))
	})
	event.Subscribe(bus, func(ev event.TerrainUpdated) {
		log.Debug("terrain updated", zap.Int("chunk_x", ev.ChunkX), zap.Int("chunk_y", ev.ChunkY))
	})
}
