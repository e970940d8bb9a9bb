package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

var errInjected = errors.New("memory: injected notification failure")

type bookingRepo struct{ v view }

func (st *state) withNames(b domain.Booking) domain.Booking {
	b = cloneBooking(b)
	if u, ok := st.users[b.RequesterID]; ok {
		b.RequesterName = u.Name
	}
	if e, ok := st.events[b.EventID]; ok {
		b.EventName = e.Name
	}
	return b
}

func (r bookingRepo) Insert(_ context.Context, b *domain.Booking) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.numbers[b.Number]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.bookings[b.ID]; ok {
			return repository.ErrDuplicate
		}
		b.Version = 1
		b.UpdatedAt = b.CreatedAt
		st.bookings[b.ID] = cloneBooking(*b)
		st.numbers[b.Number] = b.ID
		return nil
	})
}

func (r bookingRepo) Get(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	var out domain.Booking
	err := r.v.with(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = st.withNames(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no extra locking: transactions are already serialized.
func (r bookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.Get(ctx, id)
}

func (r bookingRepo) Update(_ context.Context, b *domain.Booking, expectedVersion int64) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.bookings[b.ID]
		if !ok || cur.Version != expectedVersion {
			return repository.ErrConflict
		}
		cur.Request = b.Request
		cur.Status = b.Status
		cur.Allocations = b.Allocations
		cur.Version = expectedVersion + 1
		cur.UpdatedAt = time.Now()
		st.bookings[b.ID] = cloneBooking(cur)

		b.Version = cur.Version
		b.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r bookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.v.with(func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		delete(st.bookings, id)
		delete(st.numbers, b.Number)
		for oid, o := range st.occupancies {
			if o.BookingID == id {
				delete(st.occupancies, oid)
			}
		}
		return nil
	})
}

func (r bookingRepo) List(_ context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.v.with(func(st *state) error {
		for _, b := range st.bookings {
			if f.RequesterID != uuid.Nil && b.RequesterID != f.RequesterID {
				continue
			}
			if f.EventID != uuid.Nil && b.EventID != f.EventID {
				continue
			}
			if f.Status != "" && b.Status != f.Status {
				continue
			}
			out = append(out, st.withNames(b))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number > out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r bookingRepo) ListApprovedByEvent(_ context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var out []domain.Booking
	err := r.v.with(func(st *state) error {
		for _, b := range st.bookings {
			if b.EventID == eventID && b.Status == domain.BookingApproved {
				out = append(out, b)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	ids := make([]uuid.UUID, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID)
	}
	return ids, err
}

type occupancyRepo struct{ v view }

func sortOccupancy(out []domain.Occupancy) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StayFrom.Equal(out[j].StayFrom) {
			return out[i].StayFrom.Before(out[j].StayFrom)
		}
		if out[i].BookingNumber != out[j].BookingNumber {
			return out[i].BookingNumber < out[j].BookingNumber
		}
		return out[i].PersonIndex < out[j].PersonIndex
	})
}

func (r occupancyRepo) filter(keep func(o domain.Occupancy) bool) ([]domain.Occupancy, error) {
	var out []domain.Occupancy
	err := r.v.with(func(st *state) error {
		for _, o := range st.occupancies {
			if keep(o) {
				out = append(out, o)
			}
		}
		return nil
	})
	sortOccupancy(out)
	return out, err
}

// InsertBatch mirrors the postgres exclusion constraint: an unreleased
// record may not overlap another unreleased record on the same bed.
func (r occupancyRepo) InsertBatch(_ context.Context, recs []domain.Occupancy) error {
	return r.v.with(func(st *state) error {
		for i, o := range recs {
			for _, cur := range st.occupancies {
				if cur.ReleasedAt == nil && cur.BedID == o.BedID && cur.Interval().Overlaps(o.Interval()) {
					return repository.ErrBedConflict
				}
			}
			for _, prev := range recs[:i] {
				if prev.BedID == o.BedID && prev.Interval().Overlaps(o.Interval()) {
					return repository.ErrBedConflict
				}
			}
		}
		for _, o := range recs {
			st.occupancies[o.ID] = o
		}
		return nil
	})
}

func (r occupancyRepo) DeleteByBooking(_ context.Context, bookingID uuid.UUID) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for id, o := range st.occupancies {
			if o.BookingID == bookingID {
				delete(st.occupancies, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r occupancyRepo) FindOverlapping(
	_ context.Context,
	bedIDs []uuid.UUID,
	iv domain.Interval,
	excludeBooking uuid.UUID,
) ([]domain.Occupancy, error) {
	return r.filter(func(o domain.Occupancy) bool {
		return o.ReleasedAt == nil &&
			o.BookingID != excludeBooking &&
			slices.Contains(bedIDs, o.BedID) &&
			o.Interval().Overlaps(iv)
	})
}

func (r occupancyRepo) ListActive(_ context.Context, iv domain.Interval) ([]domain.Occupancy, error) {
	return r.filter(func(o domain.Occupancy) bool {
		return o.ReleasedAt == nil && o.Interval().Overlaps(iv)
	})
}

func (r occupancyRepo) ListByEvent(_ context.Context, eventID uuid.UUID, iv domain.Interval) ([]domain.Occupancy, error) {
	all := iv.From.IsZero() && iv.To.IsZero()
	return r.filter(func(o domain.Occupancy) bool {
		return o.EventID == eventID && (all || o.Interval().Overlaps(iv))
	})
}

func (r occupancyRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]domain.Occupancy, error) {
	return r.filter(func(o domain.Occupancy) bool { return o.BookingID == bookingID })
}

func (r occupancyRepo) Release(_ context.Context, bookingID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for id, o := range st.occupancies {
			if o.BookingID == bookingID && o.ReleasedAt == nil {
				t := at
				o.ReleasedAt = &t
				st.occupancies[id] = o
				n++
			}
		}
		return nil
	})
	return n, err
}

type notificationRepo struct{ v view }

func (r notificationRepo) InsertBatch(_ context.Context, ns []domain.Notification) error {
	if r.v.s.FailNotifications {
		return errInjected
	}
	return r.v.with(func(st *state) error {
		for _, n := range ns {
			if _, ok := st.notifications[n.ID]; ok {
				return repository.ErrDuplicate
			}
		}
		for _, n := range ns {
			st.notifications[n.ID] = n
		}
		return nil
	})
}

func sortNotifications(out []domain.Notification) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SendAt.Equal(out[j].SendAt) {
			return out[i].SendAt.After(out[j].SendAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}

func (r notificationRepo) ListForRecipient(_ context.Context, recipientID uuid.UUID, now time.Time) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.v.with(func(st *state) error {
		for _, n := range st.notifications {
			if n.RecipientID == recipientID && n.ExpiresAt.After(now) && !n.SendAt.After(now) {
				out = append(out, n)
			}
		}
		return nil
	})
	sortNotifications(out)
	return out, err
}

func (r notificationRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.v.with(func(st *state) error {
		var due []domain.Notification
		for _, n := range st.notifications {
			if n.Status == domain.NotificationScheduled && !n.SendAt.After(now) {
				due = append(due, n)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i].SendAt.Before(due[j].SendAt) })
		if limit > 0 && len(due) > limit {
			due = due[:limit]
		}
		for _, n := range due {
			n.Status = domain.NotificationSent
			st.notifications[n.ID] = n
			out = append(out, n)
		}
		return nil
	})
	return out, err
}

type pushRepo struct{ v view }

func (r pushRepo) Upsert(_ context.Context, e *domain.PushEndpoint) error {
	return r.v.with(func(st *state) error {
		for id, cur := range st.endpoints {
			if cur.UserID == e.UserID && cur.Token == e.Token {
				cur.Platform = e.Platform
				st.endpoints[id] = cur
				*e = cur
				return nil
			}
		}
		st.endpoints[e.ID] = *e
		return nil
	})
}

func (r pushRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	return r.v.with(func(st *state) error {
		cur, ok := st.endpoints[id]
		if !ok || cur.UserID != userID {
			return repository.ErrNotFound
		}
		delete(st.endpoints, id)
		return nil
	})
}

func (r pushRepo) ListByUsers(_ context.Context, userIDs []uuid.UUID) ([]domain.PushEndpoint, error) {
	var out []domain.PushEndpoint
	err := r.v.with(func(st *state) error {
		for _, e := range st.endpoints {
			if slices.Contains(userIDs, e.UserID) {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

type directoryRepo struct{ v view }

func (r directoryRepo) LookupBed(_ context.Context, bedID uuid.UUID) (*domain.BedPlacement, error) {
	var out domain.BedPlacement
	err := r.v.with(func(st *state) error {
		p, ok := st.beds[bedID]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r directoryRepo) ListBeds(_ context.Context) ([]domain.BedPlacement, error) {
	var out []domain.BedPlacement
	err := r.v.with(func(st *state) error {
		for _, p := range st.beds {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Building.Name != b.Building.Name {
			return a.Building.Name < b.Building.Name
		}
		if a.Room.Name != b.Room.Name {
			return a.Room.Name < b.Room.Name
		}
		return a.Bed.Name < b.Bed.Name
	})
	return out, err
}

func (r directoryRepo) GetEvent(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	var out domain.Event
	err := r.v.with(func(st *state) error {
		e, ok := st.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r directoryRepo) ListEventsEndedBefore(_ context.Context, t time.Time) ([]domain.Event, error) {
	var out []domain.Event
	err := r.v.with(func(st *state) error {
		for _, e := range st.events {
			if !e.EndsAt.After(t) {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out, err
}

func (r directoryRepo) GetUser(_ context.Context, id uuid.UUID) (*domain.User, error) {
	var out domain.User
	err := r.v.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		out.Roles = slices.Clone(u.Roles)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r directoryRepo) UserIDsByRoles(_ context.Context, roles []string) ([]uuid.UUID, error) {
	return r.userIDs(func(u domain.User) bool {
		for _, role := range u.Roles {
			if slices.Contains(roles, role) {
				return true
			}
		}
		return false
	})
}

func (r directoryRepo) AllUserIDs(_ context.Context) ([]uuid.UUID, error) {
	return r.userIDs(func(domain.User) bool { return true })
}

func (r directoryRepo) userIDs(keep func(domain.User) bool) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if keep(u) {
				out = append(out, u.ID)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, err
}
