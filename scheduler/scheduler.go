package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ss13community/banwatch/core/errs"
	"github.com/ss13community/banwatch/core/logger"
	"github.com/ss13community/banwatch/core/opsserver"
	"github.com/ss13community/banwatch/reconcile"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// incrementalSpec fires ten times an hour and requests an incremental
	// refresh: inserts and updates only, no deletions.
	incrementalSpec = "5,10,15,20,25,35,40,45,50,55 * * * *"
	// fullSpec fires twice an hour and requests a full refresh, which also
	// runs the deletion phase.
	fullSpec = "0,30 * * * *"

	defaultJobTimeout = 30 * time.Second
)

// Scheduler triggers reconciliation for every registered adapter on the
// two cron schedules from the scheduling contract, guaranteeing at most one
// concurrent run per adapter.
type Scheduler struct {
	cron    *cron.Cron
	engine  *reconcile.Engine
	logger  *zap.Logger
	board   *opsserver.StatusBoard
	timeout time.Duration

	mu     sync.Mutex
	guards map[string]chan struct{}
}

// New builds a Scheduler. board may be nil if run status does not need to
// be surfaced over HTTP.
func New(engine *reconcile.Engine, logger *zap.Logger, board *opsserver.StatusBoard) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		engine:  engine,
		logger:  logger,
		board:   board,
		timeout: defaultJobTimeout,
		guards:  make(map[string]chan struct{}),
	}
}

// Register wires an adapter's incremental and full-refresh triggers.
func (s *Scheduler) Register(adapter reconcile.Adapter) error {
	if _, err := s.cron.AddFunc(incrementalSpec, s.guarded(adapter, false)); err != nil {
		return errs.Configuration(err)
	}
	if _, err := s.cron.AddFunc(fullSpec, s.guarded(adapter, true)); err != nil {
		return errs.Configuration(err)
	}
	return nil
}

// Bootstrap runs every adapter once immediately as a full refresh, ahead of
// their cron triggers. This is the initial bootstrap job: an operator that
// adds an adapter to the binary sees it reconciled without waiting for the
// next `0,30` tick.
func (s *Scheduler) Bootstrap(adapters []reconcile.Adapter) {
	for _, adapter := range adapters {
		go s.guarded(adapter, true)()
	}
}

// Start begins the cron loop. Register and Bootstrap must be called first.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop signals the cron loop to stop accepting new triggers and returns a
// context that is done once any in-flight cron-triggered jobs finish. Runs
// started by Bootstrap are not tracked by that context.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// guarded wraps a job so that a trigger arriving while the previous run of
// the same adapter is still in flight is dropped, not queued.
func (s *Scheduler) guarded(adapter reconcile.Adapter, completeRefresh bool) func() {
	return func() {
		guard := s.guardFor(adapter.Name())
		select {
		case guard <- struct{}{}:
		default:
			s.logger.Debug("dropping overlapping trigger",
				zap.String("adapter", adapter.Name()),
				zap.Bool("fullRefresh", completeRefresh),
			)
			return
		}
		defer func() { <-guard }()

		s.runJob(adapter, completeRefresh)
	}
}

func (s *Scheduler) guardFor(name string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	guard, ok := s.guards[name]
	if !ok {
		guard = make(chan struct{}, 1)
		s.guards[name] = guard
	}
	return guard
}

// runJob executes one reconciliation pass and records its outcome. A fatal
// error here is contained to this run: it is logged and classified, but
// never propagated to the cron loop or to other adapters.
func (s *Scheduler) runJob(adapter reconcile.Adapter, completeRefresh bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	runID := uuid.New().String()
	log := logger.WithRunID(s.logger, runID)

	start := time.Now()
	result, err := s.engine.Run(ctx, adapter, completeRefresh)
	duration := time.Since(start)

	status := opsserver.RunStatus{
		Adapter:     adapter.Name(),
		LastRunAt:   start.UTC(),
		Duration:    duration.String(),
		FullRefresh: completeRefresh,
		Success:     err == nil,
	}

	if err != nil {
		status.Error = err.Error()
		logFailure(log, adapter.Name(), completeRefresh, err)
	} else {
		status.FullRefresh = result.CompleteRefresh
		log.Info("reconcile run completed",
			zap.String("adapter", adapter.Name()),
			zap.Bool("fullRefresh", result.CompleteRefresh),
			zap.Int("inserted", result.Inserted),
			zap.Int("updated", result.Updated),
			zap.Int("deleted", result.Deleted),
			zap.Duration("duration", duration),
		)
	}

	if s.board != nil {
		s.board.Record(status)
	}
}

func logFailure(log *zap.Logger, adapterName string, completeRefresh bool, err error) {
	fields := []zap.Field{
		zap.String("adapter", adapterName),
		zap.Bool("fullRefresh", completeRefresh),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, errs.ErrSourceUnavailable):
		log.Warn("source unavailable, next trigger will retry", fields...)
	case errors.Is(err, errs.ErrSafetyAbort):
		log.Error("safety abort: refusing mass deletion", fields...)
	case errors.Is(err, errs.ErrMalformedPayload):
		log.Error("malformed source payload", fields...)
	case errors.Is(err, errs.ErrStoreFailure):
		log.Error("store failure", fields...)
	default:
		log.Error("reconcile job failed", fields...)
	}
}
