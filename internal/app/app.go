package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/kirinyoku/lodge-go/internal/auth"
	"github.com/kirinyoku/lodge-go/internal/config"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/obs"
	"github.com/kirinyoku/lodge-go/internal/postgres"
	"github.com/kirinyoku/lodge-go/internal/push"
	"github.com/kirinyoku/lodge-go/internal/redis"
	"github.com/kirinyoku/lodge-go/internal/repository"
	"github.com/kirinyoku/lodge-go/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/lodge-go/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/lodge-go/internal/repository/redis"
	"github.com/kirinyoku/lodge-go/internal/scheduler"
	"github.com/kirinyoku/lodge-go/internal/service"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
	"github.com/kirinyoku/lodge-go/internal/service/reconcile"
	httpgin "github.com/kirinyoku/lodge-go/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time.
var Version = "dev"

const serviceName = "lodge-go"

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	scheduler  *scheduler.Scheduler

	// closers run in reverse order after shutdown.
	closers []func(context.Context) error
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	shutdownTracer, err := obs.InitTracer(ctx, obs.Config{
		Endpoint:    cfg.Otel.Endpoint,
		ServiceName: serviceName,
		Version:     Version,
		Environment: cfg.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, shutdownTracer)

	verifier := auth.NewVerifier(cfg.Auth.Secret)

	// Initialize repositories
	store, err := a.openStore(ctx, verifier)
	if err != nil {
		a.close()
		return nil, err
	}

	var (
		directory repository.DirectoryRepository
		publisher notify.Publisher
		locker    gocron.Locker
		routerDep = httpgin.Deps{}
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

		cache := redisrepo.New(rdb)
		pubsub := redisrepo.NewNotificationPubSub(rdb)

		directory = redisrepo.NewCachedDirectory(store.Directory(), cache, cfg.Redis.CacheTTL)
		publisher = pubsub
		locker = redisrepo.NewJobLocker(rdb, cfg.Jobs.LockTTL)

		routerDep.Idempotency = redisrepo.NewIdempotencyStore(rdb, cfg.Server.IdempotencyTTL)
		routerDep.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "submit", cfg.Server.SubmitRateLimit, time.Minute)
		routerDep.Stream = pubsub
	} else {
		logger.Warn("REDIS_ADDR not set: running without cache, idempotency, rate limit, live stream and job lock")
	}

	sender, err := a.pushSender()
	if err != nil {
		a.close()
		return nil, err
	}

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:     store,
		Directory: directory,
		Sender:    sender,
		Publisher: publisher,
		Logger:    logger,
	}, service.Config{
		Notify:    notify.Config{DefaultTTL: cfg.Notify.DefaultTTL},
		Reconcile: reconcile.Config{Grace: cfg.Jobs.ReconcileGrace},
	})

	// Initialize jobs
	hour, minute, err := cfg.Jobs.ReconcileClock()
	if err != nil {
		a.close()
		return nil, err
	}
	loc, err := cfg.Jobs.Location()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load JOBS_TIMEZONE: %w", err)
	}

	a.scheduler, err = scheduler.New(scheduler.Config{
		ReconcileHour:    hour,
		ReconcileMinute:  minute,
		DispatchInterval: cfg.Jobs.DispatchInterval,
		Location:         loc,
		Locker:           locker,
	}, services.Reconcile, services.Notify, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	// Initialize Gin router
	routerDep.Services = services
	routerDep.Verifier = verifier
	routerDep.Logger = logger
	routerDep.CORSOrigins = cfg.Server.CORSOrigins
	routerDep.BroadcastTTL = cfg.Notify.BroadcastTTL
	routerDep.Location = loc

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpgin.NewRouter(routerDep),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context, verifier *auth.Verifier) (repository.Store, error) {
	switch a.cfg.Store.Driver {
	case config.DriverMemory:
		store := memory.New()
		demo := seedDemo(store, time.Now())

		token, err := verifier.Sign(demo.admin, time.Now(), 24*time.Hour)
		if err != nil {
			return nil, fmt.Errorf("failed to sign demo token: %w", err)
		}
		a.logger.Warn("memory store in use: data is lost on restart",
			slog.String("demo_event_id", demo.event.String()),
			slog.String("demo_admin_token", token),
		)

		return store, nil

	default:
		pool, err := postgres.New(ctx, postgres.Config{DSN: a.cfg.Postgres.DSN(), MaxConns: a.cfg.Postgres.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})

		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		return postgresrepo.NewStore(pool), nil
	}
}

// pushSender routes gateway platforms to AMQP and email endpoints to SMTP.
// Unconfigured channels only log.
func (a *App) pushSender() (push.Sender, error) {
	var (
		router   = push.NewRouter()
		fallback = push.NewLogSender(a.logger)
		gateway  = []domain.PushPlatform{domain.PlatformFCM, domain.PlatformAPNS, domain.PlatformWebPush}
	)

	if a.cfg.AMQP.URL != "" {
		s, err := push.NewAMQPSender(a.cfg.AMQP.URL, a.cfg.AMQP.PushExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize amqp: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return s.Close() })
		router.Handle(s, gateway...)
	} else {
		router.Handle(fallback, gateway...)
	}

	if a.cfg.SMTP.Host != "" {
		router.Handle(push.NewMailSender(push.MailConfig{
			Host:     a.cfg.SMTP.Host,
			Port:     a.cfg.SMTP.Port,
			Username: a.cfg.SMTP.Username,
			Password: a.cfg.SMTP.Password,
			From:     a.cfg.SMTP.From,
		}), domain.PlatformEmail)
	} else {
		router.Handle(fallback, domain.PlatformEmail)
	}

	return router, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Start jobs
	g.Go(func() error {
		return a.scheduler.Run(gCtx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", slog.Any("err", err))
		}
	}
	a.closers = nil
}
