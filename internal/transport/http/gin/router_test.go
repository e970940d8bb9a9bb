package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/auth"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/kirinyoku/lodge-go/internal/repository/memory"
	"github.com/kirinyoku/lodge-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type memIdempotency struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memIdempotency) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = "LOCK"
	return true, nil
}

func (m *memIdempotency) SaveResult(_ context.Context, key, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = "RES:" + payload
	return nil
}

func (m *memIdempotency) GetResult(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok || len(v) < 4 || v[:4] != "RES:" {
		return "", false, nil
	}
	return v[4:], true, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, id string) (bool, int64, time.Duration, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Get(1).(int64), args.Get(2).(time.Duration), args.Error(3)
}

type onceStream struct {
	n domain.Notification
}

func (s onceStream) Subscribe(ctx context.Context, _ uuid.UUID, handler func(context.Context, domain.Notification)) error {
	handler(ctx, s.n)
	return nil
}

type fixture struct {
	store    *memory.Store
	clock    *clockwork.FakeClock
	verifier *auth.Verifier
	deps     Deps
	router   *gin.Engine

	event     domain.Event
	requester uuid.UUID
	other     uuid.UUID
	admin     uuid.UUID
	beds      []uuid.UUID
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		store:     memory.New(),
		clock:     clockwork.NewFakeClockAt(time.Date(2024, 4, 20, 8, 0, 0, 0, time.UTC)),
		verifier:  auth.NewVerifier(testSecret),
		requester: uuid.New(),
		other:     uuid.New(),
		admin:     uuid.New(),
	}

	f.event = domain.Event{
		ID:       uuid.New(),
		Name:     "Spring Retreat",
		StartsAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	}
	f.store.AddEvent(f.event)
	f.store.AddUser(domain.User{ID: f.requester, Name: "Maria"})
	f.store.AddUser(domain.User{ID: f.other, Name: "Tomas"})
	f.store.AddUser(domain.User{ID: f.admin, Name: "Staff", Roles: []string{domain.RoleAdmin}})

	building := domain.Building{ID: uuid.New(), Name: "North Hall", Gender: domain.GenderFemale}
	room := domain.Room{ID: uuid.New(), BuildingID: building.ID, Name: "101"}
	for _, name := range []string{"A", "B", "C"} {
		p := domain.BedPlacement{
			Bed:      domain.Bed{ID: uuid.New(), RoomID: room.ID, Name: name},
			Room:     room,
			Building: building,
		}
		f.beds = append(f.beds, p.Bed.ID)
		f.store.AddBed(p)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(service.Deps{Store: f.store, Clock: f.clock, Logger: log}, service.Config{})

	f.deps = Deps{
		Services:     svcs,
		Verifier:     f.verifier,
		Logger:       log,
		Clock:        f.clock,
		BroadcastTTL: 24 * time.Hour,
	}
	for _, o := range opts {
		o(&f.deps)
	}
	f.router = NewRouter(f.deps)

	return f
}

func (f *fixture) token(t *testing.T, id uuid.UUID, roles ...string) string {
	t.Helper()
	tok, err := f.verifier.Sign(auth.Principal{UserID: id, Roles: roles}, time.Now(), time.Hour)
	require.NoError(t, err)
	return tok
}

type call struct {
	method  string
	path    string
	as      uuid.UUID
	admin   bool
	body    any
	headers map[string]string
}

func (f *fixture) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.as != uuid.Nil {
		var roles []string
		if c.admin {
			roles = []string{domain.RoleAdmin}
		}
		req.Header.Set("Authorization", "Bearer "+f.token(t, c.as, roles...))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func stayBody(eventID uuid.UUID, names ...string) map[string]any {
	people := make([]map[string]any, 0, len(names))
	for _, n := range names {
		people = append(people, map[string]any{"name": n, "age": 30, "gender": "female"})
	}
	return map[string]any{
		"event_id":  eventID.String(),
		"stay_from": "2024-05-01T14:00:00Z",
		"stay_to":   "2024-05-03T10:00:00Z",
		"contact":   map[string]any{"phone": "+34 600 000 000", "email": "maria@example.org"},
		"address":   map[string]any{"city": "Valencia", "country": "ES"},
		"people":    people,
	}
}

func (f *fixture) submit(t *testing.T, as uuid.UUID, names ...string) domain.Booking {
	t.Helper()
	w := f.do(t, call{method: http.MethodPost, path: "/bookings", as: as, body: stayBody(f.event.ID, names...)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Booking](t, w)
}

func (f *fixture) approve(t *testing.T, b domain.Booking, beds ...uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	allocs := make([]map[string]any, 0, len(beds))
	for i, bed := range beds {
		allocs = append(allocs, map[string]any{"person_index": i, "bed_id": bed.String()})
	}
	return f.do(t, call{
		method: http.MethodPost,
		path:   "/admin/bookings/" + b.ID.String() + "/decision",
		as:     f.admin,
		admin:  true,
		body:   map[string]any{"decision": "approved", "allocations": allocs},
	})
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, call{method: http.MethodGet, path: "/me/bookings"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me/bookings", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w = f.do(t, call{method: http.MethodGet, path: "/admin/occupancy?event_id=" + f.event.ID.String(), as: f.requester})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode[ErrorResponse](t, w).Kind)

	w = f.do(t, call{method: http.MethodGet, path: "/bookings", as: f.requester})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitBooking(t *testing.T) {
	f := newFixture(t)

	b := f.submit(t, f.requester, "Maria", "Ana")
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, f.requester, b.RequesterID)
	assert.Len(t, b.Request.People, 2)
	assert.NotEmpty(t, b.Number)

	w := f.do(t, call{method: http.MethodGet, path: "/me/bookings", as: f.requester})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Booking](t, w), 1)
}

func TestSubmitBooking_Validation(t *testing.T) {
	f := newFixture(t)

	noPeople := stayBody(f.event.ID)
	w := f.do(t, call{method: http.MethodPost, path: "/bookings", as: f.requester, body: noPeople})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode[ErrorResponse](t, w).Kind)

	badGender := stayBody(f.event.ID, "Maria")
	badGender["people"] = []map[string]any{{"name": "Maria", "age": 30, "gender": "robot"}}
	w = f.do(t, call{method: http.MethodPost, path: "/bookings", as: f.requester, body: badGender})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	reversed := stayBody(f.event.ID, "Maria")
	reversed["stay_to"] = "2024-04-30T10:00:00Z"
	w = f.do(t, call{method: http.MethodPost, path: "/bookings", as: f.requester, body: reversed})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, call{method: http.MethodPost, path: "/bookings", as: f.requester, body: stayBody(uuid.New(), "Maria")})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Kind)
}

func TestSubmitBooking_IdempotencyKeyReplays(t *testing.T) {
	idem := &memIdempotency{vals: map[string]string{}}
	f := newFixture(t, func(d *Deps) { d.Idempotency = idem })

	c := call{
		method:  http.MethodPost,
		path:    "/bookings",
		as:      f.requester,
		body:    stayBody(f.event.ID, "Maria"),
		headers: map[string]string{"Idempotency-Key": "k-1"},
	}

	first := f.do(t, c)
	require.Equal(t, http.StatusCreated, first.Code)
	second := f.do(t, c)
	require.Equal(t, http.StatusCreated, second.Code)

	assert.Equal(t, decode[domain.Booking](t, first).ID, decode[domain.Booking](t, second).ID)
	assert.Equal(t, "k-1", second.Header().Get("Idempotency-Key"))

	bs, err := f.store.Bookings().List(context.Background(), repository.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, bs, 1)
}

func TestSubmitBooking_RateLimited(t *testing.T) {
	lim := &mockLimiter{}
	f := newFixture(t, func(d *Deps) { d.Limiter = lim })
	lim.On("Allow", mock.Anything, f.requester.String()).Return(false, int64(11), 1500*time.Millisecond, nil).Once()

	w := f.do(t, call{method: http.MethodPost, path: "/bookings", as: f.requester, body: stayBody(f.event.ID, "Maria")})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode[ErrorResponse](t, w).Kind)
	lim.AssertExpectations(t)
}

func TestGetBooking_Ownership(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria")

	w := f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String(), as: f.requester})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"v1"`, w.Header().Get("ETag"))

	w = f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String(), as: f.other})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String(), as: f.admin, admin: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, call{method: http.MethodGet, path: "/bookings/not-a-uuid", as: f.requester})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecide_ApproveAndConflicts(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria", "Ana")

	w := f.approve(t, b, f.beds[0])
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_allocation", decode[ErrorResponse](t, w).Kind)

	w = f.approve(t, b, f.beds[0], f.beds[1])
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decided := decode[domain.Booking](t, w)
	assert.Equal(t, domain.BookingApproved, decided.Status)
	assert.Len(t, decided.Allocations, 2)
	assert.Equal(t, versionETag(decided.Version), w.Header().Get("ETag"))

	other := f.submit(t, f.other, "Tomas")
	w = f.approve(t, other, f.beds[1])
	require.Equal(t, http.StatusConflict, w.Code)
	res := decode[ErrorResponse](t, w)
	assert.Equal(t, "bed_conflict", res.Kind)
	assert.Contains(t, res.Error, "Ana")
}

func TestDecide_IfMatch(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria")

	decline := func(tag string) *httptest.ResponseRecorder {
		return f.do(t, call{
			method:  http.MethodPost,
			path:    "/admin/bookings/" + b.ID.String() + "/decision",
			as:      f.admin,
			admin:   true,
			body:    map[string]any{"decision": "declined"},
			headers: map[string]string{"If-Match": tag},
		})
	}

	w := decline(`"v1"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = decline(`"v1"`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode[ErrorResponse](t, w).Kind)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	w = decline("garbage")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, call{
		method: http.MethodPost,
		path:   "/admin/bookings/" + b.ID.String() + "/decision",
		as:     f.admin,
		admin:  true,
		body:   map[string]any{"decision": "maybe"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPass(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria")

	w := f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String() + "/pass", as: f.requester})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_approved", decode[ErrorResponse](t, w).Kind)

	require.Equal(t, http.StatusOK, f.approve(t, b, f.beds[0]).Code)

	w = f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String() + "/pass", as: f.requester})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestOccupancyAndAvailability(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria")
	require.Equal(t, http.StatusOK, f.approve(t, b, f.beds[2]).Code)

	w := f.do(t, call{
		method: http.MethodGet,
		path:   "/admin/occupancy?event_id=" + f.event.ID.String() + "&day=2024-05-02",
		as:     f.admin,
		admin:  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]OccupancyRow](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, "Maria", rows[0].Name)
	assert.Equal(t, f.beds[2], rows[0].BedID)
	assert.Equal(t, b.Number, rows[0].BookingNumber)

	w = f.do(t, call{
		method: http.MethodGet,
		path:   "/admin/occupancy?event_id=" + f.event.ID.String() + "&day=02-05-2024",
		as:     f.admin,
		admin:  true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, call{
		method: http.MethodGet,
		path:   "/admin/beds/availability?from=2024-05-01&to=2024-05-02",
		as:     f.admin,
		admin:  true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	avail := decode[[]domain.BedAvailability](t, w)
	require.Len(t, avail, 3)
	free := 0
	for _, a := range avail {
		if a.Free {
			free++
		}
	}
	assert.Equal(t, 2, free)

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	w = f.do(t, call{
		method:  http.MethodGet,
		path:    "/admin/beds/availability?from=2024-05-01&to=2024-05-02",
		as:      f.admin,
		admin:   true,
		headers: map[string]string{"If-None-Match": etag},
	})
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestEditAndWithdraw(t *testing.T) {
	f := newFixture(t)
	b := f.submit(t, f.requester, "Maria")

	body := stayBody(f.event.ID, "Maria", "Lucia")
	w := f.do(t, call{method: http.MethodPut, path: "/bookings/" + b.ID.String(), as: f.other, body: body})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, call{method: http.MethodPut, path: "/bookings/" + b.ID.String(), as: f.requester, body: body})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[domain.Booking](t, w).Request.People, 2)

	w = f.do(t, call{method: http.MethodDelete, path: "/bookings/" + b.ID.String(), as: f.requester})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, call{method: http.MethodGet, path: "/bookings/" + b.ID.String(), as: f.requester})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminNotifications(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, call{
		method: http.MethodPost,
		path:   "/admin/notifications",
		as:     f.admin,
		admin:  true,
		body: map[string]any{
			"message":    "Dinner is at 19:00",
			"recipients": map[string]any{"user_ids": []string{f.requester.String(), f.requester.String()}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[NotificationResponse](t, w)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, domain.NotificationSent, res.Status)
	require.NotNil(t, res.ExpiresAt)
	assert.True(t, f.clock.Now().Add(24*time.Hour).Equal(*res.ExpiresAt))

	w = f.do(t, call{method: http.MethodGet, path: "/me/notifications", as: f.requester})
	require.Equal(t, http.StatusOK, w.Code)
	ns := decode[[]domain.Notification](t, w)
	require.Len(t, ns, 1)
	assert.Equal(t, "Dinner is at 19:00", ns[0].Message)

	w = f.do(t, call{
		method: http.MethodPost,
		path:   "/admin/notifications",
		as:     f.admin,
		admin:  true,
		body:   map[string]any{"message": "nobody", "recipients": map[string]any{}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminNotifications_TTLBounds(t *testing.T) {
	f := newFixture(t)
	send := func(ttl int64) *httptest.ResponseRecorder {
		return f.do(t, call{
			method: http.MethodPost,
			path:   "/admin/notifications",
			as:     f.admin,
			admin:  true,
			body: map[string]any{
				"message":     "Checkout closes at noon",
				"recipients":  map[string]any{"user_ids": []string{f.requester.String()}},
				"ttl_minutes": ttl,
			},
		})
	}

	w := send(60)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[NotificationResponse](t, w)
	require.NotNil(t, res.ExpiresAt)
	assert.True(t, f.clock.Now().Add(time.Hour).Equal(*res.ExpiresAt))

	w = send(525_601)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(1 << 40)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, call{
		method: http.MethodPost,
		path:   "/me/push-endpoints",
		as:     f.requester,
		body:   map[string]any{"platform": "fcm", "token": "tok-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ep := decode[domain.PushEndpoint](t, w)

	w = f.do(t, call{
		method: http.MethodPost,
		path:   "/me/push-endpoints",
		as:     f.requester,
		body:   map[string]any{"platform": "pager", "token": "tok-2"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, call{method: http.MethodDelete, path: "/me/push-endpoints/" + ep.ID.String(), as: f.other})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, call{method: http.MethodDelete, path: "/me/push-endpoints/" + ep.ID.String(), as: f.requester})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNotificationStream(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, call{method: http.MethodGet, path: "/me/notifications/stream", as: f.requester})
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	n := domain.Notification{ID: uuid.New(), RecipientID: f.requester, Message: "Doors open"}
	f = newFixture(t, func(d *Deps) { d.Stream = onceStream{n: n} })

	w = f.do(t, call{method: http.MethodGet, path: "/me/notifications/stream", as: f.requester})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "event:notification")
	assert.Contains(t, w.Body.String(), "Doors open")
}

func TestParseIfMatch(t *testing.T) {
	cases := map[string]struct {
		want int64
		ok   bool
	}{
		"":         {0, true},
		"*":        {0, true},
		`"v3"`:     {3, true},
		`W/"v12"`:  {12, true},
		"7":        {7, true},
		`"v0"`:     {0, false},
		"abc":      {0, false},
		`"v-1"`:    {0, false},
		`  "v4"  `: {4, true},
	}
	for in, tc := range cases {
		got, ok := parseIfMatch(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestNextClock(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	now := time.Date(2024, 4, 20, 8, 0, 0, 0, time.UTC) // 10:00 in Madrid
	at, err := nextClock(now, "09:30", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 4, 21, 9, 30, 0, 0, loc).Equal(at), at)

	at, err = nextClock(now, "18:00", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 4, 20, 18, 0, 0, 0, loc).Equal(at), at)
}
