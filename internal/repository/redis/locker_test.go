package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLocker_LockAndUnlock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewJobLocker(db, time.Minute)
	l.token = func() string { return "tok-1" }
	ctx := context.Background()

	key := KeyJobLock("reconcile")
	mock.ExpectSetNX(key, "tok-1", time.Minute).SetVal(true)
	mock.ExpectEvalSha(compareAndDelete.Hash(), []string{key}, "tok-1").SetVal(int64(1))

	lock, err := l.Lock(ctx, "reconcile")
	require.NoError(t, err)
	require.NoError(t, lock.Unlock(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobLocker_HeldElsewhere(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewJobLocker(db, time.Minute)
	l.token = func() string { return "tok-2" }

	mock.ExpectSetNX(KeyJobLock("dispatch"), "tok-2", time.Minute).SetVal(false)

	lock, err := l.Lock(context.Background(), "dispatch")

	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Nil(t, lock)
}
