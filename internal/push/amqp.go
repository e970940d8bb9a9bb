package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kirinyoku/lodge-go/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender publishes envelopes to a topic exchange read by the push
// gateway, routed by "push.<platform>".
type AMQPSender struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

func NewAMQPSender(url, exchange string) (*AMQPSender, error) {
	const op = "push.NewAMQPSender"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: open channel: %w", op, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: declare exchange: %w", op, err)
	}

	return &AMQPSender{conn: conn, ch: ch, exchange: exchange}, nil
}

func RoutingKey(p domain.PushPlatform) string {
	return "push." + string(p)
}

func (s *AMQPSender) Send(ctx context.Context, ep domain.PushEndpoint, msg Message) error {
	const op = "push.AMQPSender.Send"

	b, err := json.Marshal(NewEnvelope(ep, msg))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx, s.exchange, RoutingKey(ep.Platform), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.NotificationID.String(),
		Timestamp:    msg.SentAt,
		Body:         b,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *AMQPSender) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
