package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

type OccupancyRepo struct {
	db DB
}

const selectOccupancy = `SELECT id, booking_id, booking_number, event_id, bed_id, room_id, building_id,
		person_index, name, age, gender, stay_from, stay_to, phone, city, released_at, created_at
	 FROM occupancies`

func scanOccupancy(row pgx.Row) (domain.Occupancy, error) {
	var (
		o      domain.Occupancy
		gender string
	)

	err := row.Scan(
		&o.ID,
		&o.BookingID,
		&o.BookingNumber,
		&o.EventID,
		&o.BedID,
		&o.RoomID,
		&o.BuildingID,
		&o.PersonIndex,
		&o.Name,
		&o.Age,
		&gender,
		&o.StayFrom,
		&o.StayTo,
		&o.Phone,
		&o.City,
		&o.ReleasedAt,
		&o.CreatedAt,
	)
	o.Gender = domain.Gender(gender)

	return o, err
}

func (r *OccupancyRepo) list(ctx context.Context, op, where string, args ...any) ([]domain.Occupancy, error) {
	rows, err := r.db.Query(ctx, selectOccupancy+" WHERE "+where+" ORDER BY stay_from, bed_id", args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, func() (domain.Occupancy, error) {
		return scanOccupancy(rows)
	})
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// InsertBatch stores the ledger records of one approval.
//
// Returns:
//   - error: repository.ErrBedConflict if the exclusion constraint rejects
//     an overlapping stay on the same bed.
func (r *OccupancyRepo) InsertBatch(ctx context.Context, recs []domain.Occupancy) error {
	const op = "postgres.OccupancyRepo.InsertBatch"

	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range recs {
		batch.Queue(
			`INSERT INTO occupancies(id, booking_id, booking_number, event_id, bed_id, room_id, building_id,
				person_index, name, age, gender, stay_from, stay_to, phone, city, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			o.ID, o.BookingID, o.BookingNumber, o.EventID, o.BedID, o.RoomID, o.BuildingID,
			o.PersonIndex, o.Name, o.Age, string(o.Gender), o.StayFrom, o.StayTo, o.Phone, o.City, o.CreatedAt,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *OccupancyRepo) DeleteByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	const op = "postgres.OccupancyRepo.DeleteByBooking"

	tag, err := r.db.Exec(ctx, `DELETE FROM occupancies WHERE booking_id = $1`, bookingID)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// FindOverlapping returns unreleased records on the given beds whose stay
// overlaps iv (half-open on both sides).
func (r *OccupancyRepo) FindOverlapping(
	ctx context.Context,
	bedIDs []uuid.UUID,
	iv domain.Interval,
	excludeBooking uuid.UUID,
) ([]domain.Occupancy, error) {
	const op = "postgres.OccupancyRepo.FindOverlapping"

	if len(bedIDs) == 0 {
		return nil, nil
	}

	return r.list(ctx, op,
		`bed_id = ANY($1) AND released_at IS NULL AND booking_id <> $2
		 AND stay_from < $4 AND stay_to > $3`,
		bedIDs, excludeBooking, iv.From, iv.To,
	)
}

func (r *OccupancyRepo) ListActive(ctx context.Context, iv domain.Interval) ([]domain.Occupancy, error) {
	const op = "postgres.OccupancyRepo.ListActive"

	return r.list(ctx, op,
		`released_at IS NULL AND stay_from < $2 AND stay_to > $1`,
		iv.From, iv.To,
	)
}

// ListByEvent lists the event's records; a zero iv means every stay.
func (r *OccupancyRepo) ListByEvent(ctx context.Context, eventID uuid.UUID, iv domain.Interval) ([]domain.Occupancy, error) {
	const op = "postgres.OccupancyRepo.ListByEvent"

	if iv.From.IsZero() && iv.To.IsZero() {
		return r.list(ctx, op, `event_id = $1`, eventID)
	}

	return r.list(ctx, op,
		`event_id = $1 AND stay_from < $3 AND stay_to > $2`,
		eventID, iv.From, iv.To,
	)
}

func (r *OccupancyRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Occupancy, error) {
	const op = "postgres.OccupancyRepo.ListByBooking"

	return r.list(ctx, op, `booking_id = $1`, bookingID)
}

func (r *OccupancyRepo) Release(ctx context.Context, bookingID uuid.UUID, at time.Time) (int64, error) {
	const op = "postgres.OccupancyRepo.Release"

	tag, err := r.db.Exec(ctx,
		`UPDATE occupancies SET released_at = $2
		 WHERE booking_id = $1 AND released_at IS NULL`,
		bookingID, at,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}
