package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/push"
	"github.com/kirinyoku/lodge-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []domain.PushEndpoint
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, ep domain.PushEndpoint, _ push.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[ep.Token] {
		return errors.New("provider rejected token")
	}
	r.sent = append(r.sent, ep)
	return nil
}

func (r *recordingSender) tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, ep := range r.sent {
		out = append(out, ep.Token)
	}
	return out
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
	return nil
}

type fixture struct {
	store  *memory.Store
	clock  *clockwork.FakeClock
	sender *recordingSender
	pub    *recordingPublisher
	svc    *Service

	admin1, admin2, guest uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.New(),
		clock:  clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
		sender: &recordingSender{fail: map[string]bool{}},
		pub:    &recordingPublisher{},
		admin1: uuid.New(),
		admin2: uuid.New(),
		guest:  uuid.New(),
	}

	f.store.AddUser(domain.User{ID: f.admin1, Name: "Ada", Roles: []string{domain.RoleAdmin}})
	f.store.AddUser(domain.User{ID: f.admin2, Name: "Grace", Roles: []string{domain.RoleAdmin, "staff"}})
	f.store.AddUser(domain.User{ID: f.guest, Name: "Linus"})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = New(f.store, f.sender, f.pub, f.clock, log, Config{})

	return f
}

func (f *fixture) endpoint(t *testing.T, user uuid.UUID, token string) {
	t.Helper()
	_, err := f.svc.RegisterEndpoint(context.Background(), user, domain.PlatformFCM, token)
	require.NoError(t, err)
}

func TestResolveRecipients_UnionDedup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := ResolveRecipients(ctx, f.store.Directory(), Selector{
		UserIDs: []uuid.UUID{f.admin1, f.guest, f.guest},
		Roles:   []string{domain.RoleAdmin, "staff"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.admin1, f.admin2, f.guest}, got)

	all, err := ResolveRecipients(ctx, f.store.Directory(), Selector{All: true, UserIDs: []uuid.UUID{f.guest}})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestResolveRecipients_Deterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sel := Selector{UserIDs: []uuid.UUID{f.guest}, Roles: []string{domain.RoleAdmin}}

	a, err := ResolveRecipients(ctx, f.store.Directory(), sel)
	require.NoError(t, err)
	b, err := ResolveRecipients(ctx, f.store.Directory(), sel)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNotify_NoRecipientsIsNoop(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Notify(context.Background(), Request{Message: "hello", Selector: Roles("nobody")})

	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Empty(t, f.sender.tokens())
}

func TestNotify_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Notify(context.Background(), Request{Message: "  ", Selector: Users(f.guest)})

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNotify_ImmediateSendsAndPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.endpoint(t, f.guest, "phone")
	f.endpoint(t, f.guest, "tablet")
	f.endpoint(t, f.admin1, "admin-phone")

	res, err := f.svc.Notify(ctx, Request{Message: "approved", Selector: Users(f.guest)})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, domain.NotificationSent, res.Status)
	assert.Equal(t, f.clock.Now().Add(DefaultTTL), res.ExpiresAt)
	assert.ElementsMatch(t, []string{"phone", "tablet"}, f.sender.tokens())
	assert.Len(t, f.pub.got, 1)

	ns, err := f.svc.ListForRecipient(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "approved", ns[0].Message)
	assert.Equal(t, domain.TargetUser, ns[0].Target)
}

func TestNotify_PushFailureIsolatedPerEndpoint(t *testing.T) {
	f := newFixture(t)
	f.endpoint(t, f.guest, "bad")
	f.endpoint(t, f.guest, "good")
	f.sender.fail["bad"] = true

	res, err := f.svc.Notify(context.Background(), Request{Message: "hi", Selector: Users(f.guest)})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []string{"good"}, f.sender.tokens())
}

func TestNotify_ScheduledIsHiddenUntilDispatched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.endpoint(t, f.admin1, "a1")
	f.endpoint(t, f.admin2, "a2")

	sendAt := f.clock.Now().Add(time.Hour)
	res, err := f.svc.Notify(ctx, Request{
		Message:  "maintenance tonight",
		Selector: Roles(domain.RoleAdmin),
		Target:   domain.TargetAdmin,
		SendAt:   &sendAt,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, domain.NotificationScheduled, res.Status)
	assert.Equal(t, sendAt.Add(DefaultTTL), res.ExpiresAt)
	assert.Empty(t, f.sender.tokens())
	assert.Empty(t, f.pub.got)

	ns, err := f.svc.ListForRecipient(ctx, f.admin1)
	require.NoError(t, err)
	assert.Empty(t, ns)

	n, err := f.svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(time.Hour)

	n, err = f.svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"a1", "a2"}, f.sender.tokens())

	ns, err = f.svc.ListForRecipient(ctx, f.admin1)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotificationSent, ns[0].Status)

	n, err = f.svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotify_PastSendAtIsImmediate(t *testing.T) {
	f := newFixture(t)

	past := f.clock.Now().Add(-time.Minute)
	res, err := f.svc.Notify(context.Background(), Request{Message: "x", Selector: Users(f.guest), SendAt: &past})

	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSent, res.Status)
	assert.Equal(t, f.clock.Now(), res.SendAt)
}

func TestListForRecipient_ExcludesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Notify(ctx, Request{Message: "short", Selector: Users(f.guest), TTL: 24 * time.Hour})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.svc.Notify(ctx, Request{Message: "long", Selector: Users(f.guest)})
	require.NoError(t, err)

	ns, err := f.svc.ListForRecipient(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "long", ns[0].Message)

	f.clock.Advance(24 * time.Hour)

	ns, err = f.svc.ListForRecipient(ctx, f.guest)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "long", ns[0].Message)
}

func TestNotify_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailNotifications = true
	f.endpoint(t, f.guest, "phone")

	_, err := f.svc.Notify(context.Background(), Request{Message: "x", Selector: Users(f.guest)})

	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Empty(t, f.sender.tokens())

	assert.NotPanics(t, func() {
		f.svc.NotifyBestEffort(context.Background(), Request{Message: "x", Selector: Users(f.guest)})
	})
}

func TestEndpoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterEndpoint(ctx, f.guest, "pager", "x")
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	ep, err := f.svc.RegisterEndpoint(ctx, f.guest, domain.PlatformEmail, "guest@example.org")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.RemoveEndpoint(ctx, ep.ID, f.admin1), ErrEndpointNotFound)
	require.NoError(t, f.svc.RemoveEndpoint(ctx, ep.ID, f.guest))
	assert.ErrorIs(t, f.svc.RemoveEndpoint(ctx, ep.ID, f.guest), ErrEndpointNotFound)
}
