// Package push hands OS-level push messages to the delivery channels.
// Provider wire formats stay outside: endpoints get an opaque JSON envelope.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

var ErrUnsupportedPlatform = errors.New("push: unsupported platform")

type Message struct {
	NotificationID uuid.UUID
	RecipientID    uuid.UUID
	Body           string
	SentAt         time.Time
}

// Sender delivers one message to one endpoint.
type Sender interface {
	Send(ctx context.Context, ep domain.PushEndpoint, msg Message) error
}

// Envelope is what the push gateway receives for every endpoint.
type Envelope struct {
	NotificationID uuid.UUID           `json:"notification_id"`
	RecipientID    uuid.UUID           `json:"recipient_id"`
	Platform       domain.PushPlatform `json:"platform"`
	Token          string              `json:"token"`
	Body           string              `json:"body"`
	SentAt         time.Time           `json:"sent_at"`
}

func NewEnvelope(ep domain.PushEndpoint, msg Message) Envelope {
	return Envelope{
		NotificationID: msg.NotificationID,
		RecipientID:    msg.RecipientID,
		Platform:       ep.Platform,
		Token:          ep.Token,
		Body:           msg.Body,
		SentAt:         msg.SentAt,
	}
}

// Router picks the Sender registered for the endpoint's platform.
type Router struct {
	senders map[domain.PushPlatform]Sender
}

func NewRouter() *Router {
	return &Router{senders: map[domain.PushPlatform]Sender{}}
}

func (r *Router) Handle(s Sender, platforms ...domain.PushPlatform) *Router {
	for _, p := range platforms {
		r.senders[p] = s
	}
	return r
}

func (r *Router) Send(ctx context.Context, ep domain.PushEndpoint, msg Message) error {
	const op = "push.Router.Send"

	s, ok := r.senders[ep.Platform]
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, ErrUnsupportedPlatform, ep.Platform)
	}

	if err := s.Send(ctx, ep, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogSender only logs; used when no gateway is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, ep domain.PushEndpoint, msg Message) error {
	s.log.Info("push",
		slog.String("platform", string(ep.Platform)),
		slog.String("endpoint_id", ep.ID.String()),
		slog.String("notification_id", msg.NotificationID.String()),
	)
	return nil
}
