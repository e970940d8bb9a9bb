package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/kirinyoku/lodge-go/internal/auth"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/service"
	"github.com/kirinyoku/lodge-go/internal/service/booking"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
	"github.com/kirinyoku/lodge-go/internal/service/pass"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Idempotency remembers submit responses per Idempotency-Key.
type Idempotency interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	GetResult(ctx context.Context, key string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

type Limiter interface {
	Allow(ctx context.Context, id string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

// Stream delivers live notifications for one user until ctx is done.
type Stream interface {
	Subscribe(ctx context.Context, userID uuid.UUID, handler func(ctx context.Context, n domain.Notification)) error
}

// Deps wires the router. Idempotency, Limiter and Stream are optional.
type Deps struct {
	Services    *service.Services
	Verifier    *auth.Verifier
	Idempotency Idempotency
	Limiter     Limiter
	Stream      Stream
	Logger      *slog.Logger
	Clock       clockwork.Clock

	CORSOrigins []string
	// BroadcastTTL applies to admin notifications sent without ttl_minutes.
	BroadcastTTL time.Duration
	// Location is the time zone of occupancy days and notify_at.
	Location *time.Location
}

type handlers struct {
	Deps
}

func NewRouter(d Deps, middlewares ...gin.HandlerFunc) *gin.Engine {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	registerValidators()

	h := &handlers{Deps: d}
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(d.Logger), RequestIDMiddleware(), CORS(d.CORSOrigins))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/", Authenticate(d.Verifier))
	{
		api.POST("/bookings", h.submitBooking)
		api.GET("/bookings/:id", h.getBooking)
		api.PUT("/bookings/:id", h.editBooking)
		api.DELETE("/bookings/:id", h.withdrawBooking)
		api.GET("/bookings/:id/pass", h.bookingPass)

		api.GET("/me/bookings", h.listMyBookings)
		api.GET("/me/notifications", h.listMyNotifications)
		api.GET("/me/notifications/stream", h.streamMyNotifications)
		api.POST("/me/push-endpoints", h.registerPushEndpoint)
		api.DELETE("/me/push-endpoints/:id", h.removePushEndpoint)

		api.GET("/bookings", RequireAdmin(), h.listBookings)
	}

	admin := api.Group("/admin", RequireAdmin())
	{
		admin.POST("/bookings/:id/decision", h.decideBooking)
		admin.GET("/occupancy", h.listOccupancy)
		admin.GET("/beds/availability", h.bedAvailability)
		admin.POST("/notifications", h.sendNotification)
	}

	return r
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func mustPrincipal(c *gin.Context) auth.Principal {
	p, _ := principalFrom(c)
	return p
}

func viewerOf(p auth.Principal) booking.Viewer {
	return booking.Viewer{UserID: p.UserID, Admin: p.IsAdmin()}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "bad_request"})
}

func retryAfter(c *gin.Context, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		allocErr    booking.InvalidAllocationError
		conflictErr booking.BedConflictError
	)

	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found", Kind: "not_found"})
	case errors.Is(err, booking.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found", Kind: "not_found"})
	case errors.Is(err, notify.ErrEndpointNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "push endpoint not found", Kind: "not_found"})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "booking belongs to another user", Kind: "forbidden"})
	case errors.Is(err, booking.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stay request", Kind: "bad_request", Details: rootCause(err)})
	case errors.Is(err, booking.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid decision", Kind: "bad_request"})
	case errors.Is(err, notify.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message is empty", Kind: "bad_request"})
	case errors.Is(err, notify.ErrInvalidPlatform):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported push platform", Kind: "bad_request"})
	case errors.As(err, &allocErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: allocErr.Error(), Kind: "invalid_allocation", Details: allocErr})
	case errors.Is(err, booking.ErrInvalidAllocation):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid allocation", Kind: "invalid_allocation"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictErr.Error(), Kind: "bed_conflict", Details: conflictErr})
	case errors.Is(err, booking.ErrBedConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "bed already occupied", Kind: "bed_conflict"})
	case errors.Is(err, booking.ErrConflict):
		retryAfter(c, time.Second)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking was modified concurrently", Kind: "conflict"})
	case errors.Is(err, pass.ErrNotApproved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is not approved", Kind: "not_approved"})
	case errors.Is(err, booking.ErrDuplicateBookingNumber):
		retryAfter(c, time.Second)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "could not allocate a booking number", Kind: "duplicate_booking_number"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled", Kind: "unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Kind: "internal"})
	}
}

// rootCause is the message of the innermost wrapped error.
func rootCause(err error) string {
	for {
		var next error
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			next = u.Unwrap()
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) > 0 {
				next = errs[len(errs)-1]
			}
		}
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
