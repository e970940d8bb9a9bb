package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("job lock held by another instance")

// compareAndDelete deletes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// JobLocker is a gocron.Locker that lets exactly one instance run a
// scheduled job run. Locks expire after ttl in case the holder dies.
type JobLocker struct {
	rdb   *redis.Client
	ttl   time.Duration
	token func() string
}

var _ gocron.Locker = (*JobLocker)(nil)

func NewJobLocker(rdb *redis.Client, ttl time.Duration) *JobLocker {
	return &JobLocker{
		rdb:   rdb,
		ttl:   ttl,
		token: uuid.NewString,
	}
}

func (l *JobLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	token := l.token()

	ok, err := l.rdb.SetNX(ctx, KeyJobLock(key), token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return &jobLock{l: l, key: KeyJobLock(key), token: token}, nil
}

type jobLock struct {
	l     *JobLocker
	key   string
	token string
}

func (j *jobLock) Unlock(ctx context.Context) error {
	return compareAndDelete.Run(ctx, j.l.rdb, []string{j.key}, j.token).Err()
}
