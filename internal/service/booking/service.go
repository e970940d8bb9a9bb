package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
	"github.com/kirinyoku/lodge-go/internal/uow"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Notifier receives the notifications spawned by booking transitions.
// Delivery is best-effort and must not fail the transition.
type Notifier interface {
	NotifyBestEffort(ctx context.Context, req notify.Request)
}

type Service struct {
	store    repository.Store
	dir      repository.DirectoryRepository
	uow      *uow.UoW
	notifier Notifier
	clock    clockwork.Clock
	log      *slog.Logger
	tracer   trace.Tracer
}

// New builds the booking service. dir serves directory lookups and is
// usually a cached view of store.Directory(); nil means store.Directory().
func New(
	store repository.Store,
	dir repository.DirectoryRepository,
	notifier Notifier,
	clock clockwork.Clock,
	log *slog.Logger,
) *Service {
	if dir == nil {
		dir = store.Directory()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		store:    store,
		dir:      dir,
		uow:      uow.NewUoW(store),
		notifier: notifier,
		clock:    clock,
		log:      log.With(slog.String("component", "booking")),
		tracer:   otel.Tracer("github.com/kirinyoku/lodge-go/internal/service/booking"),
	}
}

// Viewer is the principal reading a booking.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

// Submit creates a pending booking for the requester.
//
// Returns:
//   - error: booking.ErrInvalidRequest if the payload is malformed.
//   - error: booking.ErrEventNotFound if the event does not exist.
//   - error: booking.ErrDuplicateBookingNumber if the generated number is
//     taken; the caller should retry.
func (s *Service) Submit(
	ctx context.Context,
	requesterID, eventID uuid.UUID,
	req domain.StayRequest,
) (*domain.Booking, error) {
	const op = "service.booking.Submit"

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRequest, err)
	}

	event, err := s.dir.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	b := &domain.Booking{
		ID:          uuid.New(),
		Number:      domain.NewBookingNumber(now),
		RequesterID: requesterID,
		EventID:     eventID,
		Request:     req,
		Status:      domain.BookingPending,
		CreatedAt:   now,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Bookings().Insert(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: %w", ErrDuplicateBookingNumber, err)
			}
			return err
		}

		after(s.notifyAdmins(fmt.Sprintf("New booking %s submitted for %s", b.Number, event.Name)))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.EventName = event.Name
	b.RequesterName = s.userName(ctx, requesterID)

	return b, nil
}

// Edit replaces the stay request of the requester's own booking and puts
// it back to pending, dropping any allocation.
//
// Returns:
//   - error: booking.ErrNotFound, booking.ErrForbidden, booking.ErrInvalidRequest.
//   - error: booking.ErrConflict if the booking changed concurrently.
func (s *Service) Edit(
	ctx context.Context,
	bookingID, requesterID uuid.UUID,
	req domain.StayRequest,
) (*domain.Booking, error) {
	const op = "service.booking.Edit"

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRequest, err)
	}

	var out *domain.Booking

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		b, err := s.ownBooking(ctx, tx, bookingID, requesterID)
		if err != nil {
			return err
		}

		if _, err := tx.Occupancy().DeleteByBooking(ctx, b.ID); err != nil {
			return err
		}

		prev := b.Version
		b.Request = req
		b.Status = domain.BookingPending
		b.Allocations = nil

		if err := tx.Bookings().Update(ctx, b, prev); err != nil {
			return mapRepoErr(err)
		}

		after(s.notifyAdmins(fmt.Sprintf("Booking %s for %s was edited and needs review", b.Number, b.EventName)))

		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Withdraw deletes the requester's own booking together with its
// occupancy records.
//
// Returns:
//   - error: booking.ErrNotFound, booking.ErrForbidden.
func (s *Service) Withdraw(ctx context.Context, bookingID, requesterID uuid.UUID) error {
	const op = "service.booking.Withdraw"

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		b, err := s.ownBooking(ctx, tx, bookingID, requesterID)
		if err != nil {
			return err
		}

		if _, err := tx.Occupancy().DeleteByBooking(ctx, b.ID); err != nil {
			return err
		}

		if err := tx.Bookings().Delete(ctx, b.ID); err != nil {
			return mapRepoErr(err)
		}

		after(s.notifyAdmins(fmt.Sprintf("Booking %s for %s was withdrawn", b.Number, b.EventName)))

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Get returns the booking if the viewer owns it or is an admin.
func (s *Service) Get(ctx context.Context, id uuid.UUID, v Viewer) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	if !v.Admin && b.RequesterID != v.UserID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return b, nil
}

type Filter = repository.BookingFilter

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Booking, error) {
	const op = "service.booking.List"

	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown status %q", op, ErrInvalidRequest, f.Status)
	}

	bs, err := s.store.Bookings().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bs, nil
}

// ListOccupancy lists who sleeps where for an event. A zero day lists the
// whole event, released records included.
func (s *Service) ListOccupancy(ctx context.Context, eventID uuid.UUID, day time.Time) ([]domain.Occupancy, error) {
	const op = "service.booking.ListOccupancy"

	var iv domain.Interval
	if !day.IsZero() {
		iv = domain.Day(day)
	}

	recs, err := s.store.Occupancy().ListByEvent(ctx, eventID, iv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recs, nil
}

// BedAvailability derives per-bed availability over [from, to) from the
// occupancy ledger. A bed is free when no unreleased record overlaps.
func (s *Service) BedAvailability(ctx context.Context, from, to time.Time) ([]domain.BedAvailability, error) {
	const op = "service.booking.BedAvailability"

	if !from.Before(to) {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidRequest, domain.ErrInvalidInterval)
	}

	beds, err := s.dir.ListBeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	active, err := s.store.Occupancy().ListActive(ctx, domain.Interval{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byBed := make(map[uuid.UUID][]domain.Occupancy, len(active))
	for _, o := range active {
		byBed[o.BedID] = append(byBed[o.BedID], o)
	}

	out := make([]domain.BedAvailability, 0, len(beds))
	for _, p := range beds {
		occ := byBed[p.Bed.ID]
		out = append(out, domain.BedAvailability{
			Placement: p,
			Free:      len(occ) == 0,
			Occupants: occ,
		})
	}

	return out, nil
}

func (s *Service) ownBooking(ctx context.Context, tx repository.Tx, bookingID, requesterID uuid.UUID) (*domain.Booking, error) {
	b, err := tx.Bookings().GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if b.RequesterID != requesterID {
		return nil, ErrForbidden
	}

	return b, nil
}

func (s *Service) notifyAdmins(msg string) uow.AfterCommit {
	return func(ctx context.Context) {
		if s.notifier == nil {
			return
		}
		s.notifier.NotifyBestEffort(ctx, notify.Request{
			Message:  msg,
			Selector: notify.Roles(domain.RoleAdmin),
			Target:   domain.TargetAdmin,
		})
	}
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	u, err := s.dir.GetUser(ctx, id)
	if err != nil {
		return ""
	}
	return u.Name
}

// mapRepoErr turns storage sentinels into service sentinels. The original
// error stays in the chain so transaction retries still recognize it.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repository.ErrBedConflict):
		return fmt.Errorf("%w: %w", ErrBedConflict, err)
	}
	return err
}
