package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redsoil/colony/internal/config"
	"github.com/redsoil/colony/internal/core/event"
	coresys "github.com/redsoil/colony/internal/core/system"
	"github.com/redsoil/colony/internal/data"
	"github.com/redsoil/colony/internal/grid"
	"github.com/redsoil/colony/internal/persist"
	"github.com/redsoil/colony/internal/planner"
	"github.com/redsoil/colony/internal/scripting"
	"github.com/redsoil/colony/internal/system"
	"github.com/redsoil/colony/internal/trace"
	"github.com/redsoil/colony/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(colonyID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Redsoil Colony  v0.1.0        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        headless robot planning host       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mColony:\033[0m %s\n\n", colonyID)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/colony.toml"
	if p := os.Getenv("COLONY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Database.ColonyID)

	// 3. Load data tables
	printSection("Data")
	mats, err := data.LoadMaterialTable(cfg.Simulation.MaterialsPath)
	if err != nil {
		return fmt.Errorf("load materials: %w", err)
	}
	printStat("materials", mats.Count())

	terrainMap, err := data.LoadTerrainMap(cfg.Simulation.MapPath, mats)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	if len(terrainMap.Spawns) == 0 {
		return fmt.Errorf("load map: %s has no spawn cell", cfg.Simulation.MapPath)
	}
	printStat("solid cells", len(terrainMap.Solids))
	printStat("spawn cells", len(terrainMap.Spawns))

	lua, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	defer lua.Close()
	printOK("Lua mining rules loaded")
	fmt.Println()

	// 4. Build world state
	terrain := world.NewTerrain(terrainMap, mats, cfg.Simulation.ChunkSize)
	ws := world.NewState(terrain, mats)

	// 5. Optional checkpoint database
	var checkpoint *persist.Checkpoint
	if cfg.Database.Enabled {
		printSection("Database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("schema at version %d", version))

		checkpoint = persist.NewCheckpoint(db, cfg.Database.ColonyID)
		if err := restore(ctx, ws, checkpoint); err != nil {
			return err
		}
		fmt.Println()
	}

	// 6. Spawn robots
	printSection("Robots")
	if err := spawnRobots(ws, terrainMap.Spawns, cfg.Robots); err != nil {
		return err
	}
	printStat("explorers", ws.Explorers.Len())
	printStat("miners", ws.Miners.Len())
	fmt.Println()

	// 7. Planner worker
	sched := planner.New(cfg.Planner, log)
	sched.Start()

	var recorder trace.Recorder
	if cfg.Trace.Enabled {
		w := trace.NewWriter(cfg.Trace.Dir, "plans")
		defer func() {
			if err := w.Close(); err != nil {
				log.Warn("close trace", zap.Error(err))
			}
		}()
		recorder = w
	}

	// 8. Create systems and register with runner
	bus := event.NewBus()
	system.SubscribeLogging(bus, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewSenseSystem(ws, cfg.Simulation.DetectionRadius))
	runner.Register(system.NewKnowledgePushSystem(ws, sched, bus, cfg.Simulation.KnowledgePushInterval, log))
	dispatch := system.NewDispatchSystem(ws, sched)
	runner.Register(dispatch)
	apply := system.NewApplySystem(ws, sched, bus, recorder, log)
	runner.Register(apply)
	runner.Register(system.NewMovementSystem(ws))
	runner.Register(system.NewCollectSystem(ws, bus, lua, rand.New(rand.NewSource(cfg.Simulation.StartTime)), log))
	runner.Register(system.NewEventDispatchSystem(bus))
	var persistence *system.PersistenceSystem
	if checkpoint != nil {
		interval := int(cfg.Database.CheckpointInterval / cfg.Simulation.TickRate)
		persistence = system.NewPersistenceSystem(ws, checkpoint, log, interval)
		runner.Register(persistence)
	}
	runner.Register(system.NewCleanupSystem(ws.ECS))

	// 9. Start main loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("main loop running (tick: %s)", cfg.Simulation.TickRate))
	fmt.Println()

	statusCounter := 0
	const statusInterval = 300 // 300 ticks × 100ms = 30 seconds

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Simulation.TickRate)

			statusCounter++
			if statusCounter >= statusInterval {
				statusCounter = 0
				logStatus(log, ws, sched, apply, dispatch)
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := sched.Shutdown(ctx)
			cancel()
			if err != nil {
				log.Warn("planner did not stop in time", zap.Error(err))
			}
			if persistence != nil {
				persistence.SaveNow()
			}
			logStatus(log, ws, sched, apply, dispatch)
			log.Info("colony stopped")
			return nil
		}
	}
}

// restore loads the last checkpoint of the colony, if any.
func restore(ctx context.Context, ws *world.State, cp *persist.Checkpoint) error {
	k, err := cp.Knowledge.Load(ctx, cp.ColonyID)
	if errors.Is(err, persist.ErrNoCheckpoint) {
		printOK("no checkpoint, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore knowledge: %w", err)
	}
	cleared := ws.RestoreKnowledge(k)

	stock, err := cp.Stockpile.Load(ctx, cp.ColonyID)
	if err != nil {
		return fmt.Errorf("restore stockpile: %w", err)
	}
	for kind, qty := range stock {
		ws.Stockpile[kind] = qty
	}

	printStat("known cells", k.Stats().Discovered)
	printStat("mined cells", cleared)
	printStat("stockpile kinds", len(stock))
	return nil
}

// spawnRobots places robots round-robin on the map's spawn cells.
func spawnRobots(ws *world.State, spawns []grid.Pos, cfg config.RobotsConfig) error {
	if mat := ws.Materials.Get(cfg.MinerMaterial); cfg.Miners > 0 && (mat == nil || !mat.IsMineable()) {
		return fmt.Errorf("spawn robots: miner material %q is not mineable", cfg.MinerMaterial)
	}
	next := 0
	cell := func() (grid.Pos, error) {
		center := spawns[next%len(spawns)]
		next++
		p, ok := ws.FindSpawnCell(center)
		if !ok {
			return p, fmt.Errorf("spawn robots: no free cell near %s", center)
		}
		return p, nil
	}
	for i := 0; i < cfg.Explorers; i++ {
		p, err := cell()
		if err != nil {
			return err
		}
		ws.SpawnExplorer(p, cfg.ExplorerSpeed)
	}
	for i := 0; i < cfg.Miners; i++ {
		p, err := cell()
		if err != nil {
			return err
		}
		ws.SpawnMiner(p, cfg.MinerSpeed, cfg.MinerMaterial)
	}
	return nil
}

func logStatus(log *zap.Logger, ws *world.State, sched *planner.Scheduler, apply *system.ApplySystem, dispatch *system.DispatchSystem) {
	ks := ws.Knowledge.Stats()
	ps := sched.Stats()
	fields := []zap.Field{
		zap.Int("discovered", ks.Discovered),
		zap.Int("solids", ks.Solids),
		zap.Int("frontier", ks.Frontier),
		zap.Int("deposits_left", ws.Terrain.SolidCount()),
		zap.Int("plans_applied", apply.Applied()),
		zap.Int("plans_stale", apply.Stale()),
		zap.Int("commands_dropped", dispatch.Dropped()),
		zap.Uint64("planned", ps.Planned),
		zap.Uint64("results_dropped", ps.ResultsDropped),
	}
	for _, kind := range ws.StockpileKinds() {
		fields = append(fields, zap.Int("stock_"+kind, ws.Stockpile[kind]))
	}
	log.Info("colony status", fields...)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
