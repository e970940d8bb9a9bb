package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

// CachedDirectory serves point lookups of directory records through the
// cache. Those records change rarely and are only used for validation of
// allocation input and display names.
type CachedDirectory struct {
	repository.DirectoryRepository

	cache *Cache
	ttl   time.Duration
}

func NewCachedDirectory(next repository.DirectoryRepository, cache *Cache, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &CachedDirectory{
		DirectoryRepository: next,
		cache:               cache,
		ttl:                 ttl,
	}
}

func (d *CachedDirectory) LookupBed(ctx context.Context, bedID uuid.UUID) (*domain.BedPlacement, error) {
	p, err := GetOrSetJSON(ctx, d.cache, KeyBedPlacement(bedID), d.ttl,
		func(ctx context.Context) (domain.BedPlacement, error) {
			p, err := d.DirectoryRepository.LookupBed(ctx, bedID)
			if err != nil {
				return domain.BedPlacement{}, err
			}
			return *p, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (d *CachedDirectory) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, err := GetOrSetJSON(ctx, d.cache, KeyEvent(id), d.ttl,
		func(ctx context.Context) (domain.Event, error) {
			e, err := d.DirectoryRepository.GetEvent(ctx, id)
			if err != nil {
				return domain.Event{}, err
			}
			return *e, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (d *CachedDirectory) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := GetOrSetJSON(ctx, d.cache, KeyUser(id), d.ttl,
		func(ctx context.Context) (domain.User, error) {
			u, err := d.DirectoryRepository.GetUser(ctx, id)
			if err != nil {
				return domain.User{}, err
			}
			return *u, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}
