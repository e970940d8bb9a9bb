package service

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/push"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/kirinyoku/lodge-go/internal/service/booking"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
	"github.com/kirinyoku/lodge-go/internal/service/pass"
	"github.com/kirinyoku/lodge-go/internal/service/reconcile"
)

type Services struct {
	Booking   *booking.Service
	Notify    *notify.Service
	Reconcile *reconcile.Service
	Pass      *pass.Service
}

type Config struct {
	Notify    notify.Config
	Reconcile reconcile.Config
	PassSize  int
}

// Deps are the collaborators shared by the services. Directory, Sender and
// Publisher are optional.
type Deps struct {
	Store     repository.Store
	Directory repository.DirectoryRepository
	Sender    push.Sender
	Publisher notify.Publisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}

	n := notify.New(d.Store, d.Sender, d.Publisher, d.Clock, d.Logger, cfg.Notify)
	b := booking.New(d.Store, d.Directory, n, d.Clock, d.Logger)

	return &Services{
		Booking:   b,
		Notify:    n,
		Reconcile: reconcile.New(d.Store, d.Clock, d.Logger, cfg.Reconcile),
		Pass:      pass.New(b, cfg.PassSize),
	}
}
