package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

// DirectoryRepo reads the capacity hierarchy, events and users. The tables
// belong to other services; nothing here writes to them.
type DirectoryRepo struct {
	db DB
}

const selectPlacement = `SELECT bd.id, bd.room_id, bd.name, r.id, r.building_id, r.name, bl.id, bl.name, bl.gender
	 FROM beds bd
	 JOIN rooms r ON r.id = bd.room_id
	 JOIN buildings bl ON bl.id = r.building_id`

func scanPlacement(row pgx.Row) (domain.BedPlacement, error) {
	var (
		p      domain.BedPlacement
		gender string
	)

	err := row.Scan(
		&p.Bed.ID, &p.Bed.RoomID, &p.Bed.Name,
		&p.Room.ID, &p.Room.BuildingID, &p.Room.Name,
		&p.Building.ID, &p.Building.Name, &gender,
	)
	p.Building.Gender = domain.Gender(gender)

	return p, err
}

// LookupBed resolves a bed to its room and building.
//
// Returns:
//   - error: repository.ErrNotFound if the bed does not exist.
func (r *DirectoryRepo) LookupBed(ctx context.Context, bedID uuid.UUID) (*domain.BedPlacement, error) {
	const op = "postgres.DirectoryRepo.LookupBed"

	p, err := scanPlacement(r.db.QueryRow(ctx, selectPlacement+` WHERE bd.id = $1`, bedID))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

func (r *DirectoryRepo) ListBeds(ctx context.Context) ([]domain.BedPlacement, error) {
	const op = "postgres.DirectoryRepo.ListBeds"

	rows, err := r.db.Query(ctx, selectPlacement+` ORDER BY bl.name, r.name, bd.name`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.BedPlacement, error) {
		return scanPlacement(rows)
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *DirectoryRepo) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.DirectoryRepo.GetEvent"

	var e domain.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, name, starts_at, ends_at FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &e, nil
}

func (r *DirectoryRepo) ListEventsEndedBefore(ctx context.Context, t time.Time) ([]domain.Event, error) {
	const op = "postgres.DirectoryRepo.ListEventsEndedBefore"

	rows, err := r.db.Query(ctx,
		`SELECT id, name, starts_at, ends_at FROM events
		 WHERE ends_at <= $1
		 ORDER BY ends_at`,
		t,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.Event, error) {
		var e domain.Event
		err := rows.Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt)
		return e, err
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *DirectoryRepo) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.DirectoryRepo.GetUser"

	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, roles FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Roles)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

func (r *DirectoryRepo) UserIDsByRoles(ctx context.Context, roles []string) ([]uuid.UUID, error) {
	const op = "postgres.DirectoryRepo.UserIDsByRoles"

	if len(roles) == 0 {
		return nil, nil
	}

	return r.userIDs(ctx, op, `SELECT id FROM users WHERE roles && $1 ORDER BY id`, roles)
}

func (r *DirectoryRepo) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	const op = "postgres.DirectoryRepo.AllUserIDs"

	return r.userIDs(ctx, op, `SELECT id FROM users ORDER BY id`)
}

func (r *DirectoryRepo) userIDs(ctx context.Context, op, sql string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	ids, err := collect(rows, func() (uuid.UUID, error) {
		var id uuid.UUID
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return ids, nil
}
