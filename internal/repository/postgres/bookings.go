package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

type BookingRepo struct {
	db DB
}

const selectBooking = `SELECT b.id, b.number, b.requester_id, b.event_id, b.request, b.status,
		b.allocations, b.version, b.created_at, b.updated_at,
		COALESCE(u.name, ''), COALESCE(e.name, '')
	 FROM bookings b
	 LEFT JOIN users u ON u.id = b.requester_id
	 LEFT JOIN events e ON e.id = b.event_id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b           domain.Booking
		status      string
		request     []byte
		allocations []byte
	)

	if err := row.Scan(
		&b.ID,
		&b.Number,
		&b.RequesterID,
		&b.EventID,
		&request,
		&status,
		&allocations,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.RequesterName,
		&b.EventName,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(request, &b.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if err := json.Unmarshal(allocations, &b.Allocations); err != nil {
		return nil, fmt.Errorf("decode allocations: %w", err)
	}

	b.Status = domain.BookingStatus(status)

	return &b, nil
}

func encodeBooking(b *domain.Booking) (request, allocations []byte, err error) {
	request, err = json.Marshal(b.Request)
	if err != nil {
		return nil, nil, err
	}

	allocs := b.Allocations
	if allocs == nil {
		allocs = []domain.Allocation{}
	}
	allocations, err = json.Marshal(allocs)
	if err != nil {
		return nil, nil, err
	}

	return request, allocations, nil
}

// Insert stores a new booking with version 1.
//
// Returns:
//   - error: repository.ErrDuplicate if the booking number is already taken.
func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Insert"

	request, allocations, err := encodeBooking(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.Version = 1

	err = r.db.QueryRow(ctx,
		`INSERT INTO bookings(id, number, requester_id, event_id, request, status, allocations, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING created_at, updated_at`,
		b.ID, b.Number, b.RequesterID, b.EventID, request, string(b.Status), allocations, b.Version, b.CreatedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// Get retrieves a booking by its ID with requester and event names joined in.
//
// Returns:
//   - error: repository.ErrNotFound if the booking does not exist.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	b, err := scanBooking(r.db.QueryRow(ctx, selectBooking+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// GetForUpdate is Get with the booking row locked until the transaction ends.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetForUpdate"

	b, err := scanBooking(r.db.QueryRow(ctx, selectBooking+` WHERE b.id = $1 FOR UPDATE OF b`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return b, nil
}

// Update replaces request, status and allocations if the stored version is
// still expectedVersion, and bumps the version.
//
// Returns:
//   - error: repository.ErrConflict if the booking was changed concurrently
//     or no longer exists.
func (r *BookingRepo) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	const op = "postgres.BookingRepo.Update"

	request, allocations, err := encodeBooking(b)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.db.QueryRow(ctx,
		`UPDATE bookings
		 SET request = $2, status = $3, allocations = $4, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $5
		 RETURNING version, updated_at`,
		b.ID, request, string(b.Status), allocations, expectedVersion,
	).Scan(&b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		}
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.BookingRepo.Delete"

	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// List returns bookings matching every non-zero field of f, newest first.
func (r *BookingRepo) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.List"

	var (
		where []string
		args  []any
	)

	if f.RequesterID != uuid.Nil {
		args = append(args, f.RequesterID)
		where = append(where, fmt.Sprintf("b.requester_id = $%d", len(args)))
	}
	if f.EventID != uuid.Nil {
		args = append(args, f.EventID)
		where = append(where, fmt.Sprintf("b.event_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}

	sql := selectBooking
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY b.created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.Booking, error) {
		b, err := scanBooking(rows)
		if err != nil {
			return domain.Booking{}, err
		}
		return *b, nil
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *BookingRepo) ListApprovedByEvent(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	const op = "postgres.BookingRepo.ListApprovedByEvent"

	rows, err := r.db.Query(ctx,
		`SELECT id FROM bookings
		 WHERE event_id = $1 AND status = 'approved'
		 ORDER BY created_at`,
		eventID,
	)
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
