// Package scheduler runs the time-triggered jobs: the daily reconciliation
// sweep and the dispatcher for scheduled notifications.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/service/reconcile"
)

const (
	JobReconcile = "reconcile"
	JobDispatch  = "dispatch-notifications"
)

type Reconciler interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

type Dispatcher interface {
	DispatchDue(ctx context.Context) (int, error)
}

type Config struct {
	ReconcileHour    uint
	ReconcileMinute  uint
	DispatchInterval time.Duration
	Location         *time.Location
	// Timeout bounds one job run.
	Timeout time.Duration
	// Locker, when set, lets only one replica run each job occurrence.
	Locker gocron.Locker
	Clock  clockwork.Clock
}

type Scheduler struct {
	s   gocron.Scheduler
	log *slog.Logger
	cfg Config
	ctx context.Context
}

func New(cfg Config, rec Reconciler, disp Dispatcher, log *slog.Logger) (*Scheduler, error) {
	const op = "scheduler.New"

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.DispatchInterval <= 0 {
		cfg.DispatchInterval = time.Minute
	}

	opts := []gocron.SchedulerOption{gocron.WithLocation(cfg.Location)}
	if cfg.Clock != nil {
		opts = append(opts, gocron.WithClock(cfg.Clock))
	}
	if cfg.Locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(cfg.Locker))
	}

	gs, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Scheduler{
		s:   gs,
		log: log.With(slog.String("component", "scheduler")),
		cfg: cfg,
		ctx: context.Background(),
	}

	_, err = gs.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(cfg.ReconcileHour, cfg.ReconcileMinute, 0))),
		gocron.NewTask(s.reconcile, rec),
		gocron.WithName(JobReconcile),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, JobReconcile, err)
	}

	_, err = gs.NewJob(
		gocron.DurationJob(cfg.DispatchInterval),
		gocron.NewTask(s.dispatch, disp),
		gocron.WithName(JobDispatch),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, JobDispatch, err)
	}

	return s, nil
}

func (s *Scheduler) reconcile(rec Reconciler) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	if _, err := rec.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "reconciliation failed", slog.Any("err", err))
	}
}

func (s *Scheduler) dispatch(disp Dispatcher) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	defer cancel()

	n, err := disp.DispatchDue(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "dispatch failed", slog.Any("err", err))
		return
	}
	if n > 0 {
		s.log.InfoContext(ctx, "scheduled notifications dispatched", slog.Int("count", n))
	}
}

// Jobs returns the registered jobs by name.
func (s *Scheduler) Jobs() map[string]gocron.Job {
	out := map[string]gocron.Job{}
	for _, j := range s.s.Jobs() {
		out[j.Name()] = j
	}
	return out
}

// Run starts the jobs and blocks until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	const op = "scheduler.Scheduler.Run"

	s.ctx = ctx
	s.s.Start()
	s.log.Info("scheduler started",
		slog.String("reconcile_at", fmt.Sprintf("%02d:%02d", s.cfg.ReconcileHour, s.cfg.ReconcileMinute)),
		slog.String("location", s.cfg.Location.String()),
		slog.Duration("dispatch_interval", s.cfg.DispatchInterval),
	)

	<-ctx.Done()

	if err := s.s.Shutdown(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
