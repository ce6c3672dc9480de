// Package planner runs robot planning on a background worker goroutine.
//
// The main loop talks to the worker only through two bounded channels. It
// never blocks on either: a full command queue drops the command (the agent
// is re-dispatched next tick) and a full result queue drops the result.
package planner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redsoil/colony/internal/config"
	"github.com/redsoil/colony/internal/knowledge"
	"github.com/redsoil/colony/internal/robot"
	"go.uber.org/zap"
)

// Stats are cumulative counters since Start.
type Stats struct {
	Sent           uint64
	Dropped        uint64 // commands rejected by a full queue
	Planned        uint64 // plan commands processed
	Results        uint64
	ResultsDropped uint64
	Panics         uint64
}

// Scheduler owns the worker goroutine and its channels.
type Scheduler struct {
	commands chan Command
	results  chan Result

	mu        sync.RWMutex
	knowledge *knowledge.WorldKnowledge

	pollTimeout time.Duration
	opts        robot.Options

	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
	done    chan struct{}

	sent           atomic.Uint64
	dropped        atomic.Uint64
	planned        atomic.Uint64
	produced       atomic.Uint64
	resultsDropped atomic.Uint64
	panics         atomic.Uint64

	log *zap.Logger
}

func New(cfg config.PlannerConfig, log *zap.Logger) *Scheduler {
	poll := cfg.PollTimeout
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	cmdSize, resSize := cfg.CommandQueueSize, cfg.ResultQueueSize
	if cmdSize <= 0 {
		cmdSize = 100
	}
	if resSize <= 0 {
		resSize = 100
	}
	return &Scheduler{
		commands:    make(chan Command, cmdSize),
		results:     make(chan Result, resSize),
		knowledge:   knowledge.New(),
		pollTimeout: poll,
		opts:        robot.Options{PartialDepth: cfg.PartialPathDepth},
		done:        make(chan struct{}),
		log:         log.With(zap.String("component", "planner")),
	}
}

// Start launches the worker. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.run()
	s.log.Info("planner worker started",
		zap.Int("command_queue", cap(s.commands)),
		zap.Int("result_queue", cap(s.results)),
		zap.Duration("poll_timeout", s.pollTimeout))
}

// Send enqueues a command without blocking. It reports false when the queue
// is full or the scheduler has shut down.
func (s *Scheduler) Send(cmd Command) bool {
	if s.stopped.Load() {
		return false
	}
	select {
	case s.commands <- cmd:
		s.sent.Add(1)
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// PublishKnowledge hands the worker a deep copy of k.
func (s *Scheduler) PublishKnowledge(k *knowledge.WorldKnowledge) bool {
	return s.Send(UpdateWorldKnowledge{Snapshot: k.Clone()})
}

// Drain receives every result currently queued, without waiting.
func (s *Scheduler) Drain(fn func(Result)) int {
	n := 0
	for {
		select {
		case r := <-s.results:
			fn(r)
			n++
		default:
			return n
		}
	}
}

// Knowledge returns the worker's current snapshot. The caller must treat it
// as read-only.
func (s *Scheduler) Knowledge() *knowledge.WorldKnowledge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.knowledge
}

// Shutdown asks the worker to stop and waits for it to exit or for ctx to
// expire. Commands queued before the request are still processed; Send
// rejects everything after it.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	if !s.started.Load() {
		s.stopped.Store(true)
		return nil
	}
	if s.stopped.CompareAndSwap(false, true) {
		// the worker drains the queue, so this only waits for space
		select {
		case s.commands <- Shutdown{}:
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("enqueue shutdown: %w", ctx.Err())
		}
	}

	joined := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
		st := s.Stats()
		s.log.Info("planner worker stopped",
			zap.Uint64("planned", st.Planned),
			zap.Uint64("dropped", st.Dropped),
			zap.Uint64("results_dropped", st.ResultsDropped))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("join planner worker: %w", ctx.Err())
	}
}

func (s *Scheduler) Stats() Stats {
	return Stats{
		Sent:           s.sent.Load(),
		Dropped:        s.dropped.Load(),
		Planned:        s.planned.Load(),
		Results:        s.produced.Load(),
		ResultsDropped: s.resultsDropped.Load(),
		Panics:         s.panics.Load(),
	}
}

// run is the worker loop. It is the only reader of commands and the only
// writer of results.
func (s *Scheduler) run() {
	defer s.wg.Done()
	defer close(s.done)

	timer := time.NewTimer(s.pollTimeout)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.pollTimeout)

		select {
		case cmd, ok := <-s.commands:
			if !ok {
				continue
			}
			if _, quit := cmd.(Shutdown); quit {
				return
			}
			s.handle(cmd)
		case <-timer.C:
			// idle poll
		}
	}
}

func (s *Scheduler) handle(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.log.Error("planner panic recovered",
				zap.String("command", fmt.Sprintf("%T", cmd)),
				zap.Any("panic", r))
		}
	}()

	switch c := cmd.(type) {
	case UpdateWorldKnowledge:
		if c.Snapshot == nil {
			return
		}
		s.mu.Lock()
		s.knowledge = c.Snapshot
		s.mu.Unlock()

	case PlanExplorerMovement, PlanMinerMovement:
		s.planned.Add(1)
		if res, ok := s.plan(c); ok {
			s.log.Debug("plan ready", zap.Stringer("agent", res.Agent()), zap.Any("plan", res))
			s.publish(res)
		}
	}
}

func (s *Scheduler) plan(cmd Command) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Plan(cmd, s.knowledge, s.opts)
}

func (s *Scheduler) publish(r Result) {
	select {
	case s.results <- r:
		s.produced.Add(1)
	default:
		s.resultsDropped.Add(1)
		s.log.Warn("result queue full, plan dropped", zap.Stringer("agent", r.Agent()))
	}
}
