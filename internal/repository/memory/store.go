// Package memory keeps every repository in process memory. It backs the
// "memory" store driver for local runs and the service tests.
//
// Transactions are serialized by one mutex and run against a copy of the
// state that replaces the live state only when fn succeeds.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

type state struct {
	bookings      map[uuid.UUID]domain.Booking
	numbers       map[string]uuid.UUID
	occupancies   map[uuid.UUID]domain.Occupancy
	notifications map[uuid.UUID]domain.Notification
	endpoints     map[uuid.UUID]domain.PushEndpoint

	beds   map[uuid.UUID]domain.BedPlacement
	events map[uuid.UUID]domain.Event
	users  map[uuid.UUID]domain.User
}

func newState() *state {
	return &state{
		bookings:      map[uuid.UUID]domain.Booking{},
		numbers:       map[string]uuid.UUID{},
		occupancies:   map[uuid.UUID]domain.Occupancy{},
		notifications: map[uuid.UUID]domain.Notification{},
		endpoints:     map[uuid.UUID]domain.PushEndpoint{},
		beds:          map[uuid.UUID]domain.BedPlacement{},
		events:        map[uuid.UUID]domain.Event{},
		users:         map[uuid.UUID]domain.User{},
	}
}

func cloneMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

func same[V any](v V) V { return v }

func (s *state) clone() *state {
	return &state{
		bookings:      cloneMap(s.bookings, cloneBooking),
		numbers:       cloneMap(s.numbers, same[uuid.UUID]),
		occupancies:   cloneMap(s.occupancies, same[domain.Occupancy]),
		notifications: cloneMap(s.notifications, same[domain.Notification]),
		endpoints:     cloneMap(s.endpoints, same[domain.PushEndpoint]),
		beds:          s.beds,
		events:        s.events,
		users:         s.users,
	}
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Request.People = slices.Clone(b.Request.People)
	b.Allocations = slices.Clone(b.Allocations)
	return b
}

type Store struct {
	mu sync.Mutex
	st *state

	// FailNotifications makes notification batch inserts fail; tests use it
	// to exercise best-effort delivery.
	FailNotifications bool
}

func New() *Store {
	return &Store{st: newState()}
}

// view is a set of repositories over either the live state (tx == nil,
// every call locks) or a transaction's private copy.
type view struct {
	s  *Store
	tx *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

func (s *Store) live() view { return view{s: s} }

func (s *Store) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, view{s: s, tx: work}); err != nil {
		return err
	}

	s.st = work

	return nil
}

func (s *Store) Bookings() repository.BookingRepository          { return bookingRepo{s.live()} }
func (s *Store) Occupancy() repository.OccupancyRepository       { return occupancyRepo{s.live()} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s.live()} }
func (s *Store) PushEndpoints() repository.PushEndpointRepository { return pushRepo{s.live()} }
func (s *Store) Directory() repository.DirectoryRepository       { return directoryRepo{s.live()} }

func (v view) Bookings() repository.BookingRepository          { return bookingRepo{v} }
func (v view) Occupancy() repository.OccupancyRepository       { return occupancyRepo{v} }
func (v view) Notifications() repository.NotificationRepository { return notificationRepo{v} }
func (v view) PushEndpoints() repository.PushEndpointRepository { return pushRepo{v} }
func (v view) Directory() repository.DirectoryRepository       { return directoryRepo{v} }

// Directory seeding. The capacity, event and identity data is owned by
// other services; these exist for tests and local runs.

func (s *Store) AddBed(p domain.BedPlacement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.beds[p.Bed.ID] = p
}

func (s *Store) AddEvent(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.events[e.ID] = e
}

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Roles = slices.Clone(u.Roles)
	s.st.users[u.ID] = u
}
