package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

type PushEndpointRepo struct {
	db DB
}

// Upsert registers the endpoint; registering the same token twice for a
// user keeps the first record and refreshes its platform.
func (r *PushEndpointRepo) Upsert(ctx context.Context, e *domain.PushEndpoint) error {
	const op = "postgres.PushEndpointRepo.Upsert"

	err := r.db.QueryRow(ctx,
		`INSERT INTO push_endpoints(id, user_id, platform, token, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform
		 RETURNING id, created_at`,
		e.ID, e.UserID, string(e.Platform), e.Token, e.CreatedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PushEndpointRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const op = "postgres.PushEndpointRepo.Delete"

	tag, err := r.db.Exec(ctx, `DELETE FROM push_endpoints WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *PushEndpointRepo) ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]domain.PushEndpoint, error) {
	const op = "postgres.PushEndpointRepo.ListByUsers"

	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, platform, token, created_at
		 FROM push_endpoints
		 WHERE user_id = ANY($1)
		 ORDER BY user_id, created_at`,
		userIDs,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.PushEndpoint, error) {
		var (
			e        domain.PushEndpoint
			platform string
		)
		err := rows.Scan(&e.ID, &e.UserID, &platform, &e.Token, &e.CreatedAt)
		e.Platform = domain.PushPlatform(platform)
		return e, err
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
