package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/push"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTTL = 7 * 24 * time.Hour

	defaultDispatchBatch   = 100
	defaultPushConcurrency = 16
	defaultPushTimeout     = 10 * time.Second
)

type Config struct {
	DefaultTTL      time.Duration
	DispatchBatch   int
	PushConcurrency int
	PushTimeout     time.Duration
}

// Publisher relays delivered notifications to live in-app listeners.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

type Service struct {
	store  repository.Store
	sender push.Sender
	pub    Publisher
	clock  clockwork.Clock
	log    *slog.Logger
	tracer trace.Tracer
	cfg    Config
}

// New builds the dispatcher. sender and pub may be nil, in which case the
// corresponding channel is skipped.
func New(
	store repository.Store,
	sender push.Sender,
	pub Publisher,
	clock clockwork.Clock,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.DispatchBatch <= 0 {
		cfg.DispatchBatch = defaultDispatchBatch
	}
	if cfg.PushConcurrency <= 0 {
		cfg.PushConcurrency = defaultPushConcurrency
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = defaultPushTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		store:  store,
		sender: sender,
		pub:    pub,
		clock:  clock,
		log:    log.With(slog.String("component", "notify")),
		tracer: otel.Tracer("github.com/kirinyoku/lodge-go/internal/service/notify"),
		cfg:    cfg,
	}
}

type Request struct {
	Message  string
	Selector Selector
	Target   domain.NotificationTarget
	// SendAt in the future schedules the notification; nil or past means now.
	SendAt *time.Time
	// TTL counts from the effective send time. Zero means the default.
	TTL time.Duration
}

type Result struct {
	Created   int
	Status    domain.NotificationStatus
	SendAt    time.Time
	ExpiresAt time.Time
}

// Notify persists one notification per unique recipient in a single batch
// and, for immediate ones, pushes them to every registered endpoint.
//
// Returns:
//   - Result: zero Created when no recipient resolved; that is not an error.
//   - error: notify.ErrEmptyMessage if the message is blank.
//   - error: notify.ErrDeliveryFailed if recipients could not be resolved or
//     the batch could not be stored.
func (s *Service) Notify(ctx context.Context, req Request) (Result, error) {
	const op = "service.notify.Notify"

	ctx, span := s.tracer.Start(ctx, "notify.Notify")
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return Result{}, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
	}

	recipients, err := ResolveRecipients(ctx, s.store.Directory(), req.Selector)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve recipients")
		return Result{}, fmt.Errorf("%s: %w: %w", op, ErrDeliveryFailed, err)
	}

	now := s.clock.Now()
	res := Result{Status: domain.NotificationSent, SendAt: now}
	if req.SendAt != nil && req.SendAt.After(now) {
		res.Status = domain.NotificationScheduled
		res.SendAt = *req.SendAt
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	res.ExpiresAt = res.SendAt.Add(ttl)

	target := req.Target
	if target == "" {
		target = domain.TargetUser
	}

	span.SetAttributes(
		attribute.Int("notify.recipients", len(recipients)),
		attribute.String("notify.status", string(res.Status)),
	)

	if len(recipients) == 0 {
		return res, nil
	}

	ns := make([]domain.Notification, 0, len(recipients))
	for _, id := range recipients {
		ns = append(ns, domain.Notification{
			ID:          uuid.New(),
			RecipientID: id,
			Target:      target,
			Message:     req.Message,
			Status:      res.Status,
			SendAt:      res.SendAt,
			ExpiresAt:   res.ExpiresAt,
			CreatedAt:   now,
		})
	}

	if err := s.store.Notifications().InsertBatch(ctx, ns); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert batch")
		return Result{}, fmt.Errorf("%s: %w: %w", op, ErrDeliveryFailed, err)
	}

	res.Created = len(ns)

	if res.Status == domain.NotificationSent {
		s.deliver(ctx, ns)
	}

	return res, nil
}

// NotifyBestEffort is Notify for domain transitions: failures are logged
// and swallowed.
func (s *Service) NotifyBestEffort(ctx context.Context, req Request) {
	if _, err := s.Notify(ctx, req); err != nil {
		s.log.ErrorContext(ctx, "notification not delivered",
			slog.String("target", string(req.Target)),
			slog.Any("err", err),
		)
	}
}

// ListForRecipient returns the recipient's notifications that are already
// due and not yet expired, newest first.
func (s *Service) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]domain.Notification, error) {
	const op = "service.notify.ListForRecipient"

	ns, err := s.store.Notifications().ListForRecipient(ctx, recipientID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ns, nil
}

func (s *Service) RegisterEndpoint(
	ctx context.Context,
	userID uuid.UUID,
	platform domain.PushPlatform,
	token string,
) (*domain.PushEndpoint, error) {
	const op = "service.notify.RegisterEndpoint"

	switch platform {
	case domain.PlatformFCM, domain.PlatformAPNS, domain.PlatformWebPush, domain.PlatformEmail:
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPlatform)
	}

	ep := &domain.PushEndpoint{
		ID:        uuid.New(),
		UserID:    userID,
		Platform:  platform,
		Token:     strings.TrimSpace(token),
		CreatedAt: s.clock.Now(),
	}

	if err := s.store.PushEndpoints().Upsert(ctx, ep); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ep, nil
}

func (s *Service) RemoveEndpoint(ctx context.Context, id, userID uuid.UUID) error {
	const op = "service.notify.RemoveEndpoint"

	if err := s.store.PushEndpoints().Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEndpointNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
