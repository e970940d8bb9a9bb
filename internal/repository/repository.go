package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

type BookingFilter struct {
	RequesterID uuid.UUID
	EventID     uuid.UUID
	Status      domain.BookingStatus
}

type BookingRepository interface {
	Insert(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// GetForUpdate loads the booking and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// Update writes request, status and allocations and bumps the version,
	// but only if the stored version still equals expectedVersion.
	// Returns ErrConflict otherwise.
	Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f BookingFilter) ([]domain.Booking, error)
	ListApprovedByEvent(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
}

type OccupancyRepository interface {
	InsertBatch(ctx context.Context, recs []domain.Occupancy) error
	DeleteByBooking(ctx context.Context, bookingID uuid.UUID) (int64, error)
	// FindOverlapping returns unreleased records on any of bedIDs whose
	// interval overlaps iv, ignoring records of excludeBooking.
	FindOverlapping(ctx context.Context, bedIDs []uuid.UUID, iv domain.Interval, excludeBooking uuid.UUID) ([]domain.Occupancy, error)
	ListActive(ctx context.Context, iv domain.Interval) ([]domain.Occupancy, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, iv domain.Interval) ([]domain.Occupancy, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Occupancy, error)
	// Release marks every unreleased record of the booking as released.
	Release(ctx context.Context, bookingID uuid.UUID, at time.Time) (int64, error)
}

type NotificationRepository interface {
	// InsertBatch stores all records or none.
	InsertBatch(ctx context.Context, ns []domain.Notification) error
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, now time.Time) ([]domain.Notification, error)
	// ClaimDue flips up to limit scheduled records whose send time has
	// arrived to sent and returns them.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error)
}

type PushEndpointRepository interface {
	Upsert(ctx context.Context, e *domain.PushEndpoint) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]domain.PushEndpoint, error)
}

// DirectoryRepository reads data owned by the capacity, event and identity
// collaborators.
type DirectoryRepository interface {
	LookupBed(ctx context.Context, bedID uuid.UUID) (*domain.BedPlacement, error)
	ListBeds(ctx context.Context) ([]domain.BedPlacement, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListEventsEndedBefore(ctx context.Context, t time.Time) ([]domain.Event, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UserIDsByRoles(ctx context.Context, roles []string) ([]uuid.UUID, error)
	AllUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Bookings() BookingRepository
	Occupancy() OccupancyRepository
	Notifications() NotificationRepository
	PushEndpoints() PushEndpointRepository
	Directory() DirectoryRepository
}

// Store hands out repositories outside of any transaction and runs
// functions inside one. RunTx rolls back when fn returns an error.
type Store interface {
	Tx
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
