package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationPubSub_PublishesOnRecipientChannel(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := NewNotificationPubSub(db)

	n := domain.Notification{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Target:      domain.TargetUser,
		Message:     "Your booking was approved",
		Status:      domain.NotificationSent,
		SendAt:      time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2026, 7, 8, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(n)
	require.NoError(t, err)

	mock.ExpectPublish(ChannelNotifications(n.RecipientID), payload).SetVal(1)

	require.NoError(t, p.Publish(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}
