package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/push"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DispatchDue delivers scheduled notifications whose send time has arrived.
// Records are claimed (flipped to sent) before delivery, so concurrent
// dispatchers never push the same record twice.
func (s *Service) DispatchDue(ctx context.Context) (int, error) {
	const op = "service.notify.DispatchDue"

	ctx, span := s.tracer.Start(ctx, "notify.DispatchDue")
	defer span.End()

	total := 0
	for {
		claimed, err := s.store.Notifications().ClaimDue(ctx, s.clock.Now(), s.cfg.DispatchBatch)
		if err != nil {
			span.RecordError(err)
			return total, fmt.Errorf("%s: %w", op, err)
		}

		if len(claimed) > 0 {
			s.deliver(ctx, claimed)
			total += len(claimed)
		}

		if len(claimed) < s.cfg.DispatchBatch {
			break
		}
	}

	span.SetAttributes(attribute.Int("notify.dispatched", total))

	return total, nil
}

type fanOut struct {
	sent   int64
	failed int64
}

// deliver publishes to live listeners and pushes to every endpoint of every
// recipient concurrently. Failures are logged per endpoint and never
// returned.
func (s *Service) deliver(ctx context.Context, ns []domain.Notification) fanOut {
	ctx = context.WithoutCancel(ctx)

	if s.pub != nil {
		for _, n := range ns {
			if err := s.pub.Publish(ctx, n); err != nil {
				s.log.WarnContext(ctx, "live publish failed",
					slog.String("notification_id", n.ID.String()),
					slog.Any("err", err),
				)
			}
		}
	}

	var out fanOut
	if s.sender == nil {
		return out
	}

	userIDs := make([]uuid.UUID, 0, len(ns))
	for _, n := range ns {
		userIDs = append(userIDs, n.RecipientID)
	}

	eps, err := s.store.PushEndpoints().ListByUsers(ctx, userIDs)
	if err != nil {
		s.log.ErrorContext(ctx, "load push endpoints", slog.Any("err", err))
		return out
	}

	byUser := make(map[uuid.UUID][]domain.PushEndpoint, len(eps))
	for _, ep := range eps {
		byUser[ep.UserID] = append(byUser[ep.UserID], ep)
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.PushConcurrency)

	for _, n := range ns {
		msg := push.Message{
			NotificationID: n.ID,
			RecipientID:    n.RecipientID,
			Body:           n.Message,
			SentAt:         n.SendAt,
		}

		for _, ep := range byUser[n.RecipientID] {
			g.Go(func() error {
				pctx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
				defer cancel()

				if err := s.sender.Send(pctx, ep, msg); err != nil {
					atomic.AddInt64(&out.failed, 1)
					s.log.WarnContext(ctx, "push failed",
						slog.String("endpoint_id", ep.ID.String()),
						slog.String("platform", string(ep.Platform)),
						slog.Any("err", err),
					)
					return nil
				}

				atomic.AddInt64(&out.sent, 1)
				return nil
			})
		}
	}

	_ = g.Wait()

	return out
}
