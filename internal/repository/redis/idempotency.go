package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	idemNS     = ns + ":idem"
	idemLock   = "LOCK"
	idemResult = "RES:"
)

// KeyIdemSubmit scopes an Idempotency-Key to the submitting user so two
// users cannot collide on the same client-generated key.
func KeyIdemSubmit(userID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:submit:%s:%s", idemNS, userID, idemKey)
}

// IdempotencyStore remembers the response of a mutating request for ttl.
// A key is first held with a short lock while the request runs, then
// overwritten with the serialized result.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	const op = "redis.IdempotencyStore.AcquireLock"

	ok, err := s.rdb.SetNX(ctx, key, idemLock, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	const op = "redis.IdempotencyStore.SaveResult"

	if err := s.rdb.Set(ctx, key, idemResult+jsonPayload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetResult returns the stored payload. A key that is absent or still
// locked reports found == false.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (payload string, found bool, err error) {
	const op = "redis.IdempotencyStore.GetResult"

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	payload, found = strings.CutPrefix(v, idemResult)
	if !found {
		return "", false, nil
	}

	return payload, true, nil
}

// Release drops a lock taken by AcquireLock after a failed request so the
// client may retry with the same key. A stored result is left in place.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	const op = "redis.IdempotencyStore.Release"

	if err := compareAndDelete.Run(ctx, s.rdb, []string{key}, idemLock).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
