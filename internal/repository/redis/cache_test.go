package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	repository.DirectoryRepository
	events map[uuid.UUID]domain.Event
	calls  int
}

func (s *stubDirectory) GetEvent(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	s.calls++
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func TestGetOrSetJSON_MissLoadsAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	ctx := context.Background()

	want := domain.Event{ID: uuid.New(), Name: "Summer camp"}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyEvent(want.ID)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(payload), time.Minute).SetVal("OK")

	got, err := GetOrSetJSON(ctx, c, key, time.Minute, func(context.Context) (domain.Event, error) {
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSON_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	want := domain.Event{ID: uuid.New(), Name: "Winter retreat"}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyEvent(want.ID)
	mock.ExpectGet(key).SetVal(string(payload))

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute, func(context.Context) (domain.Event, error) {
		t.Fatal("loader must not run on a hit")
		return domain.Event{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSON_CacheDownFallsBackToLoader(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	down := errors.New("connection refused")
	want := domain.Event{ID: uuid.New(), Name: "Conference"}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyEvent(want.ID)
	mock.ExpectGet(key).SetErr(down)
	mock.ExpectGet(key).SetErr(down)
	mock.ExpectSet(key, string(payload), time.Minute).SetErr(down)

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute, func(context.Context) (domain.Event, error) {
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
}

func TestCachedDirectory_NotFoundIsNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	next := &stubDirectory{events: map[uuid.UUID]domain.Event{}}
	d := NewCachedDirectory(next, New(db), time.Minute)

	id := uuid.New()
	mock.ExpectGet(KeyEvent(id)).RedisNil()
	mock.ExpectGet(KeyEvent(id)).RedisNil()

	_, err := d.GetEvent(context.Background(), id)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetJSON_StalePayloadReloads(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	want := domain.Event{ID: uuid.New(), Name: "Retreat"}
	payload, err := json.Marshal(want)
	require.NoError(t, err)

	key := KeyEvent(want.ID)
	mock.ExpectGet(key).SetVal("not json")
	mock.ExpectGet(key).SetVal("not json")
	mock.ExpectSet(key, string(payload), time.Minute).SetVal("OK")

	got, err := GetOrSetJSON(context.Background(), c, key, time.Minute, func(context.Context) (domain.Event, error) {
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
