// Package reconcile releases the beds of bookings whose event has ended.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultGrace = 48 * time.Hour

type Config struct {
	// Grace is how long after an event's end its beds stay allocated.
	Grace time.Duration
}

type Service struct {
	store  repository.Store
	clock  clockwork.Clock
	log    *slog.Logger
	tracer trace.Tracer
	cfg    Config
}

func New(store repository.Store, clock clockwork.Clock, log *slog.Logger, cfg Config) *Service {
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		store:  store,
		clock:  clock,
		log:    log.With(slog.String("component", "reconcile")),
		tracer: otel.Tracer("github.com/kirinyoku/lodge-go/internal/service/reconcile"),
		cfg:    cfg,
	}
}

type Report struct {
	Events   int `json:"events"`
	Bookings int `json:"bookings"`
	Released int `json:"released"`
	Failures int `json:"failures"`
}

// Run sweeps every event that ended at least Grace ago and marks the
// occupancy records of its approved bookings as released. Each booking is
// handled in its own transaction; a failure is logged and counted and the
// sweep goes on. Released records are never touched again, so repeated
// runs change nothing.
func (s *Service) Run(ctx context.Context) (Report, error) {
	const op = "service.reconcile.Run"

	ctx, span := s.tracer.Start(ctx, "reconcile.Run")
	defer span.End()

	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.Grace)

	events, err := s.store.Directory().ListEventsEndedBefore(ctx, cutoff)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	var rep Report
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("%s: %w", op, err)
		}

		rep.Events++
		s.sweepEvent(ctx, ev, now, &rep)
	}

	span.SetAttributes(
		attribute.Int("reconcile.events", rep.Events),
		attribute.Int("reconcile.bookings", rep.Bookings),
		attribute.Int("reconcile.released", rep.Released),
		attribute.Int("reconcile.failures", rep.Failures),
	)

	s.log.InfoContext(ctx, "reconciliation finished",
		slog.Int("events", rep.Events),
		slog.Int("bookings", rep.Bookings),
		slog.Int("released", rep.Released),
		slog.Int("failures", rep.Failures),
	)

	return rep, nil
}

func (s *Service) sweepEvent(ctx context.Context, ev domain.Event, now time.Time, rep *Report) {
	ids, err := s.store.Bookings().ListApprovedByEvent(ctx, ev.ID)
	if err != nil {
		rep.Failures++
		s.log.ErrorContext(ctx, "list approved bookings",
			slog.String("event_id", ev.ID.String()),
			slog.Any("err", err),
		)
		return
	}

	for _, id := range ids {
		n, err := s.release(ctx, id, now)
		if err != nil {
			rep.Failures++
			s.log.ErrorContext(ctx, "release booking",
				slog.String("event_id", ev.ID.String()),
				slog.String("booking_id", id.String()),
				slog.Any("err", err),
			)
			continue
		}

		rep.Bookings++
		rep.Released += int(n)
	}
}

var errNotApproved = errors.New("booking is no longer approved")

// release locks the booking and re-checks its status so a concurrent
// decision or withdrawal is never overridden.
func (s *Service) release(ctx context.Context, bookingID uuid.UUID, now time.Time) (int64, error) {
	var n int64

	err := s.store.RunTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.Bookings().GetForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}

		if b.Status != domain.BookingApproved {
			return errNotApproved
		}

		n, err = tx.Occupancy().Release(ctx, b.ID, now)
		return err
	})
	if errors.Is(err, errNotApproved) {
		return 0, nil
	}

	return n, err
}
