package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
	"github.com/kirinyoku/lodge-go/internal/uow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NotificationPolicy controls the requester notification a decision
// produces when it changes the status.
type NotificationPolicy struct {
	Suppress bool
	SendAt   *time.Time
}

type DecideInput struct {
	BookingID uuid.UUID
	Decision  domain.BookingStatus
	// Allocations is required for approvals only: one entry per person.
	// Room and building are resolved from the bed.
	Allocations []domain.Allocation
	Policy      NotificationPolicy
	// IfVersion, when non-zero, must equal the booking's current version.
	IfVersion int64
}

// Decide moves a booking to approved, declined or back to pending.
//
// Everything happens in one transaction: the booking row is locked, the
// allocation set is validated, the old occupancy records are removed, the
// new ones are checked against the ledger and written, and the booking is
// updated under its version. A rejected allocation leaves the booking and
// its ledger records exactly as they were.
//
// Returns:
//   - *domain.Booking: the decided booking with display names populated.
//   - error: booking.ErrNotFound, booking.ErrInvalidDecision.
//   - error: booking.InvalidAllocationError (booking.ErrInvalidAllocation).
//   - error: booking.BedConflictError (booking.ErrBedConflict).
//   - error: booking.ErrConflict if IfVersion is stale or a concurrent
//     writer won.
func (s *Service) Decide(ctx context.Context, in DecideInput) (*domain.Booking, error) {
	const op = "service.booking.Decide"

	ctx, span := s.tracer.Start(ctx, "booking.Decide")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking.id", in.BookingID.String()),
		attribute.String("booking.decision", string(in.Decision)),
	)

	if !in.Decision.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidDecision, in.Decision)
	}

	// Directory lookups happen before the transaction opens: the directory
	// is served outside the store's transaction and must not be called while
	// it is held.
	var beds map[uuid.UUID]domain.BedPlacement
	if in.Decision == domain.BookingApproved {
		var err error
		if beds, err = s.lookupBeds(ctx, in.Allocations); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	var out *domain.Booking

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		b, err := tx.Bookings().GetForUpdate(ctx, in.BookingID)
		if err != nil {
			return mapRepoErr(err)
		}

		if in.IfVersion != 0 && in.IfVersion != b.Version {
			return fmt.Errorf("%w: version %d, expected %d", ErrConflict, b.Version, in.IfVersion)
		}

		var allocs []domain.Allocation
		if in.Decision == domain.BookingApproved {
			allocs, err = resolveAllocations(b, in.Allocations, beds)
			if err != nil {
				return err
			}
		}

		if _, err := tx.Occupancy().DeleteByBooking(ctx, b.ID); err != nil {
			return err
		}

		prevStatus, prevVersion := b.Status, b.Version
		b.Status = in.Decision
		b.Allocations = allocs

		if b.Status == domain.BookingApproved {
			if err := s.reserve(ctx, tx, b); err != nil {
				return err
			}
		}

		if err := tx.Bookings().Update(ctx, b, prevVersion); err != nil {
			return mapRepoErr(err)
		}

		if prevStatus != b.Status && !in.Policy.Suppress {
			after(s.notifyRequester(b, in.Policy))
		}

		out = b
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decide")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// lookupBeds loads the placement of every bed named in the allocation set.
// Unknown beds are left out of the map.
func (s *Service) lookupBeds(ctx context.Context, in []domain.Allocation) (map[uuid.UUID]domain.BedPlacement, error) {
	out := make(map[uuid.UUID]domain.BedPlacement, len(in))
	for _, a := range in {
		if _, ok := out[a.BedID]; ok {
			continue
		}
		p, err := s.dir.LookupBed(ctx, a.BedID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[a.BedID] = *p
	}

	return out, nil
}

// resolveAllocations checks the allocation set against the booking and
// fills room, building and display names from the looked up placements.
func resolveAllocations(
	b *domain.Booking,
	in []domain.Allocation,
	beds map[uuid.UUID]domain.BedPlacement,
) ([]domain.Allocation, error) {
	people := len(b.Request.People)
	if len(in) != people {
		return nil, InvalidAllocationError{Want: people, Got: len(in)}
	}

	out := make([]domain.Allocation, people)
	seenPerson := make(map[int]bool, people)
	seenBed := make(map[uuid.UUID]bool, people)

	for _, a := range in {
		if a.PersonIndex < 0 || a.PersonIndex >= people {
			return nil, InvalidAllocationError{Want: people, Got: len(in),
				Reason: fmt.Sprintf("person index %d out of range", a.PersonIndex)}
		}
		if seenPerson[a.PersonIndex] {
			return nil, InvalidAllocationError{Want: people, Got: len(in),
				Reason: fmt.Sprintf("person %d allocated twice", a.PersonIndex)}
		}
		if seenBed[a.BedID] {
			return nil, InvalidAllocationError{Want: people, Got: len(in),
				Reason: fmt.Sprintf("bed %s assigned to more than one person", a.BedID)}
		}
		seenPerson[a.PersonIndex] = true
		seenBed[a.BedID] = true

		p, ok := beds[a.BedID]
		if !ok {
			return nil, InvalidAllocationError{Want: people, Got: len(in),
				Reason: fmt.Sprintf("bed %s does not exist", a.BedID)}
		}

		if (a.RoomID != uuid.Nil && a.RoomID != p.Room.ID) ||
			(a.BuildingID != uuid.Nil && a.BuildingID != p.Building.ID) {
			return nil, InvalidAllocationError{Want: people, Got: len(in),
				Reason: fmt.Sprintf("bed %s is not in the given room or building", a.BedID)}
		}

		out[a.PersonIndex] = domain.Allocation{
			PersonIndex:  a.PersonIndex,
			BedID:        p.Bed.ID,
			RoomID:       p.Room.ID,
			BuildingID:   p.Building.ID,
			BedName:      p.Bed.Name,
			RoomName:     p.Room.Name,
			BuildingName: p.Building.Name,
		}
	}

	return out, nil
}

// reserve writes the booking's occupancy records after checking that no
// other unreleased record holds any of the beds for an overlapping stay.
// The store enforces the same rule, which covers writers racing past the
// check.
func (s *Service) reserve(ctx context.Context, tx repository.Tx, b *domain.Booking) error {
	bedIDs := make([]uuid.UUID, 0, len(b.Allocations))
	names := make(map[uuid.UUID]string, len(b.Allocations))
	for _, a := range b.Allocations {
		bedIDs = append(bedIDs, a.BedID)
		names[a.BedID] = a.BedName
	}

	taken, err := tx.Occupancy().FindOverlapping(ctx, bedIDs, b.Request.Interval(), b.ID)
	if err != nil {
		return err
	}

	if len(taken) > 0 {
		o := taken[0]
		return BedConflictError{
			BedID:         o.BedID,
			BedName:       names[o.BedID],
			OccupantName:  o.Name,
			BookingNumber: o.BookingNumber,
		}
	}

	if err := tx.Occupancy().InsertBatch(ctx, b.Occupancies(uuid.New, s.clock.Now())); err != nil {
		return mapRepoErr(err)
	}

	return nil
}

func (s *Service) notifyRequester(b *domain.Booking, policy NotificationPolicy) uow.AfterCommit {
	msg := domain.StatusMessage(b, b.EventName)
	requester := b.RequesterID

	return func(ctx context.Context) {
		if s.notifier == nil {
			return
		}
		s.log.DebugContext(ctx, "status notification",
			slog.String("booking", b.Number),
			slog.String("status", string(b.Status)),
		)
		s.notifier.NotifyBestEffort(ctx, notify.Request{
			Message:  msg,
			Selector: notify.Users(requester),
			Target:   domain.TargetUser,
			SendAt:   policy.SendAt,
		})
	}
}
