package redis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NotificationPubSub relays freshly delivered notifications to the
// instances holding a live stream for the recipient.
type NotificationPubSub struct {
	rdb *redis.Client
}

func NewNotificationPubSub(rdb *redis.Client) *NotificationPubSub {
	return &NotificationPubSub{rdb: rdb}
}

func (p *NotificationPubSub) Publish(ctx context.Context, n domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, ChannelNotifications(n.RecipientID), b).Err()
}

// Subscribe blocks until ctx is done, calling handler for every
// notification published for userID.
func (p *NotificationPubSub) Subscribe(
	ctx context.Context,
	userID uuid.UUID,
	handler func(ctx context.Context, n domain.Notification),
) error {
	sub := p.rdb.Subscribe(ctx, ChannelNotifications(userID))
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(64))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var n domain.Notification
			if err := json.Unmarshal([]byte(m.Payload), &n); err == nil && n.ID != uuid.Nil {
				handler(ctx, n)
			}
		}
	}
}
