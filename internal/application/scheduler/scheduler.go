package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/invoice"
	"github.com/andrescamacho/factory-economy/internal/application/production"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ErrStopped is returned by Do once the loop has exited
var ErrStopped = errors.New("scheduler stopped")

// Flusher persists dirty records. It returns how many records were written.
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// Settings controls the loop cadence. A zero pass interval disables that pass.
type Settings struct {
	TickInterval         time.Duration
	TaxAssessInterval    time.Duration
	OverdueCheckInterval time.Duration
	SalaryInterval       time.Duration
	FlushInterval        time.Duration // 0 flushes after every tick
}

type job struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

type pass struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

type inLoopKey struct{}

// Scheduler is the single writer of the engine. One goroutine runs the tick,
// the periodic passes and every queued player action, so no two mutations
// ever interleave.
type Scheduler struct {
	factories  factory.FactoryRepository
	production *production.Engine
	upgrades   *upgrade.Engine
	cursors    schedule.CursorRepository
	flusher    Flusher
	settings   Settings
	clock      shared.Clock
	logger     *slog.Logger

	passes    []pass
	jobs      chan job
	stopCh    chan struct{}
	done      chan struct{}
	lastFlush time.Time

	mu        sync.Mutex
	lifecycle *shared.LifecycleStateMachine
	stopOnce  sync.Once
}

func New(
	factories factory.FactoryRepository,
	productionEngine *production.Engine,
	upgradeEngine *upgrade.Engine,
	taxEngine *tax.Engine,
	invoices *invoice.Ledger,
	cursors schedule.CursorRepository,
	flusher Flusher,
	settings Settings,
	clock shared.Clock,
	logger *slog.Logger,
) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = time.Second
	}

	s := &Scheduler{
		factories:  factories,
		production: productionEngine,
		upgrades:   upgradeEngine,
		cursors:    cursors,
		flusher:    flusher,
		settings:   settings,
		clock:      clock,
		logger:     logger,
		jobs:       make(chan job),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		lifecycle:  shared.NewLifecycleStateMachine(clock),
	}

	s.passes = []pass{
		{name: schedule.PassTaxAssessment, interval: settings.TaxAssessInterval, run: func(ctx context.Context) error {
			_, err := taxEngine.Assess(ctx)
			return err
		}},
		{name: schedule.PassOverdueCheck, interval: settings.OverdueCheckInterval, run: func(ctx context.Context) error {
			_, err := taxEngine.CheckOverdue(ctx)
			return err
		}},
		{name: schedule.PassSalaryRun, interval: settings.SalaryInterval, run: func(ctx context.Context) error {
			_, err := invoices.SalaryRun(ctx)
			return err
		}},
	}
	return s
}

// Status returns the loop lifecycle status
func (s *Scheduler) Status() shared.LifecycleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.Status()
}

// Run owns the calling goroutine until ctx is cancelled or Stop is called.
// Dirty records are flushed once more on the way out.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	err := s.lifecycle.Start()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer close(s.done)

	ctx = common.WithLogger(ctx, s.logger)
	loopCtx := context.WithValue(ctx, inLoopKey{}, true)

	if err := s.initCursors(loopCtx); err != nil {
		s.finish(err)
		return err
	}
	s.lastFlush = s.clock.Now()

	s.logger.InfoContext(ctx, "scheduler started", "tick_interval", s.settings.TickInterval.String())

	ticker := time.NewTicker(s.settings.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown(context.WithoutCancel(loopCtx))
			return nil
		case <-s.stopCh:
			s.shutdown(loopCtx)
			return nil
		case <-ticker.C:
			s.Tick(loopCtx)
		case j := <-s.jobs:
			s.runJob(loopCtx, j)
		}
	}
}

// Stop asks the loop to exit and waits until it has
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.mu.Lock()
	started := s.lifecycle.Status() != shared.LifecycleStatusPending
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

// Do runs fn on the scheduler goroutine and returns its error. Calls made from
// inside the loop run inline. A context cancelled while the job is still queued
// returns ctx.Err() and fn never runs.
func (s *Scheduler) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inLoop, _ := ctx.Value(inLoopKey{}).(bool); inLoop {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case s.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	case <-s.stopCh:
		return ErrStopped
	}

	select {
	case err := <-j.result:
		return err
	case <-s.done:
		return ErrStopped
	}
}

func (s *Scheduler) runJob(loopCtx context.Context, j job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- err
		return
	}
	ctx := context.WithValue(j.ctx, inLoopKey{}, true)
	if !common.HasLogger(j.ctx) {
		ctx = common.WithLogger(ctx, common.LoggerFromContext(loopCtx))
	}
	j.result <- j.fn(ctx)
}

// Tick runs one scheduler step: production and upgrade timers, the periodic
// passes that are due, then a flush. Only call it from the loop goroutine, or
// from tests that never start Run.
func (s *Scheduler) Tick(ctx context.Context) {
	start := time.Now()

	s.tickFactories(ctx)
	s.runDuePasses(ctx)
	s.maybeFlush(ctx, false)

	metrics.RecordTick(time.Since(start).Seconds())
}

// RunOnce brings the store up to date without starting the loop: cursors are
// initialised, one tick runs and dirty records are flushed. One-shot CLI runs
// call it before acting; it must not be used while Run is active.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !common.HasLogger(ctx) {
		ctx = common.WithLogger(ctx, s.logger)
	}
	if err := s.initCursors(ctx); err != nil {
		return err
	}
	start := time.Now()
	s.tickFactories(ctx)
	s.runDuePasses(ctx)
	s.maybeFlush(ctx, true)
	metrics.RecordTick(time.Since(start).Seconds())
	return nil
}

func (s *Scheduler) tickFactories(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)

	factories, err := s.factories.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list factories for tick", "error", err)
		return
	}

	for _, f := range factories {
		if _, err := s.production.Tick(ctx, f); err != nil {
			logger.ErrorContext(ctx, "production tick failed", "factory_id", f.ID(), "error", err)
		}
		if _, err := s.upgrades.Tick(ctx, f); err != nil {
			logger.ErrorContext(ctx, "upgrade tick failed", "factory_id", f.ID(), "error", err)
		}
	}
}

func (s *Scheduler) runDuePasses(ctx context.Context) {
	logger := common.LoggerFromContext(ctx)
	now := s.clock.Now()

	for _, p := range s.passes {
		if p.interval <= 0 {
			continue
		}

		cursor, ok, err := s.cursors.Get(ctx, p.name)
		if err != nil {
			logger.ErrorContext(ctx, "failed to read scheduler cursor", "pass", p.name, "error", err)
			continue
		}
		if ok && !cursor.Due(now, p.interval) {
			continue
		}

		started := time.Now()
		err = p.run(ctx)
		metrics.RecordPass(p.name, time.Since(started).Seconds(), err == nil)
		if err != nil {
			logger.ErrorContext(ctx, "periodic pass failed", "pass", p.name, "error", err)
			continue
		}

		// Missed runs during downtime collapse into this single run.
		if err := s.cursors.Save(ctx, schedule.Cursor{Name: p.name, LastRun: now}); err != nil {
			logger.ErrorContext(ctx, "failed to save scheduler cursor", "pass", p.name, "error", err)
		}
		logger.DebugContext(ctx, "periodic pass complete", "pass", p.name)
	}
}

// initCursors gives every enabled pass a starting point so a fresh store waits
// one full interval before the first run.
func (s *Scheduler) initCursors(ctx context.Context) error {
	now := s.clock.Now()
	for _, p := range s.passes {
		if p.interval <= 0 {
			continue
		}
		_, ok, err := s.cursors.Get(ctx, p.name)
		if err != nil {
			return fmt.Errorf("failed to read cursor %s: %w", p.name, err)
		}
		if ok {
			continue
		}
		if err := s.cursors.Save(ctx, schedule.Cursor{Name: p.name, LastRun: now}); err != nil {
			return fmt.Errorf("failed to save cursor %s: %w", p.name, err)
		}
	}
	return nil
}

func (s *Scheduler) maybeFlush(ctx context.Context, force bool) {
	if s.flusher == nil {
		return
	}
	now := s.clock.Now()
	if !force && s.settings.FlushInterval > 0 && now.Sub(s.lastFlush) < s.settings.FlushInterval {
		return
	}

	n, err := s.flusher.Flush(ctx)
	metrics.RecordFlush(err == nil, n)
	if err != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "flush failed", "error", err)
		return
	}
	s.lastFlush = now
}

func (s *Scheduler) shutdown(ctx context.Context) {
	s.maybeFlush(ctx, true)
	s.finish(nil)
	s.logger.InfoContext(ctx, "scheduler stopped")
}

func (s *Scheduler) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		_ = s.lifecycle.Fail(err)
		return
	}
	_ = s.lifecycle.Stop()
}
