package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	redisrepo "github.com/kirinyoku/lodge-go/internal/repository/redis"
	"github.com/kirinyoku/lodge-go/internal/service/booking"
)

const (
	submitAttempts = 3
	idemLockTTL    = 60 * time.Second
)

// @Summary  Submit a booking request (idempotent)
// @Tags     bookings
// @Security BearerAuth
// @Param    Idempotency-Key header string false "client-generated key"
// @Param    req body  SubmitBookingRequest true "payload"
// @Success  201 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "event not found"
// @Failure  409 {object} ErrorResponse "idempotency key in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  503 {object} ErrorResponse "booking number collision"
// @Router   /bookings [post]
func (h *handlers) submitBooking(c *gin.Context) {
	ctx := c.Request.Context()
	p := mustPrincipal(c)

	var req SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	eventID := uuid.MustParse(req.EventID)

	if h.Limiter != nil {
		allowed, _, wait, err := h.Limiter.Allow(ctx, p.UserID.String())
		if err != nil {
			h.Logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
		} else if !allowed {
			retryAfter(c, wait)
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many booking requests", Kind: "rate_limited"})
			return
		}
	}

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	var idemStorageKey string
	if h.Idempotency != nil && idemKey != "" {
		idemStorageKey = redisrepo.KeyIdemSubmit(p.UserID, idemKey)

		if payload, ok, _ := h.Idempotency.GetResult(ctx, idemStorageKey); ok {
			replay(c, idemKey, payload)
			return
		}

		locked, err := h.Idempotency.AcquireLock(ctx, idemStorageKey, idemLockTTL)
		if err != nil {
			respondErr(c, err)
			return
		}
		if !locked {
			if payload, ok, _ := h.Idempotency.GetResult(ctx, idemStorageKey); ok {
				replay(c, idemKey, payload)
				return
			}
			retryAfter(c, time.Second)
			c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress", Kind: "conflict"})
			return
		}
	}

	var (
		b   *domain.Booking
		err error
	)
	for range submitAttempts {
		b, err = h.Services.Booking.Submit(ctx, p.UserID, eventID, req.toDomain())
		if !errors.Is(err, booking.ErrDuplicateBookingNumber) {
			break
		}
	}
	if err != nil {
		if idemStorageKey != "" {
			_ = h.Idempotency.Release(ctx, idemStorageKey)
		}
		respondErr(c, err)
		return
	}

	if idemStorageKey != "" {
		body, _ := json.Marshal(b)
		_ = h.Idempotency.SaveResult(ctx, idemStorageKey, string(body))
		c.Header("Idempotency-Key", idemKey)
	}

	c.Header("ETag", versionETag(b.Version))
	c.JSON(http.StatusCreated, b)
}

func replay(c *gin.Context, idemKey, payload string) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
}

// @Summary  Get a booking
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func (h *handlers) getBooking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	b, err := h.Services.Booking.Get(c.Request.Context(), id, viewerOf(mustPrincipal(c)))
	if err != nil {
		respondErr(c, err)
		return
	}

	tag := versionETag(b.Version)
	c.Header("ETag", tag)
	if c.GetHeader("If-None-Match") == tag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, b)
}

// @Summary  Edit own booking; it returns to pending
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  StayRequestBody true "payload"
// @Success  200 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse
// @Router   /bookings/{id} [put]
func (h *handlers) editBooking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req StayRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	b, err := h.Services.Booking.Edit(c.Request.Context(), id, mustPrincipal(c).UserID, req.toDomain())
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Header("ETag", versionETag(b.Version))
	c.JSON(http.StatusOK, b)
}

// @Summary  Withdraw own booking
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  204
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [delete]
func (h *handlers) withdrawBooking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Services.Booking.Withdraw(c.Request.Context(), id, mustPrincipal(c).UserID); err != nil {
		respondErr(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary  Booking pass QR code
// @Tags     bookings
// @Security BearerAuth
// @Produce  png
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {file} binary
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "not approved"
// @Router   /bookings/{id}/pass [get]
func (h *handlers) bookingPass(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	png, err := h.Services.Pass.Render(c.Request.Context(), id, viewerOf(mustPrincipal(c)))
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// @Summary  List own bookings
// @Tags     bookings
// @Security BearerAuth
// @Success  200 {array} domain.Booking
// @Router   /me/bookings [get]
func (h *handlers) listMyBookings(c *gin.Context) {
	bs, err := h.Services.Booking.List(c.Request.Context(), booking.Filter{RequesterID: mustPrincipal(c).UserID})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}

// @Summary  List bookings (admin)
// @Tags     admin
// @Security BearerAuth
// @Param    event_id query string false "Event ID (uuid)"
// @Param    status   query string false "pending, approved or declined"
// @Success  200 {array} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Router   /bookings [get]
func (h *handlers) listBookings(c *gin.Context) {
	var f booking.Filter
	if s := c.Query("event_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, "invalid event_id")
			return
		}
		f.EventID = id
	}
	f.Status = domain.BookingStatus(c.Query("status"))

	bs, err := h.Services.Booking.List(c.Request.Context(), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}
