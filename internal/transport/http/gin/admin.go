package httpgin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/service/booking"
	"github.com/kirinyoku/lodge-go/internal/service/notify"
)

// @Summary  Decide a booking: approve with allocations, decline or reset
// @Tags     admin
// @Security BearerAuth
// @Param    id       path   string  true  "Booking ID (uuid)"
// @Param    If-Match header string  false "booking ETag"
// @Param    req      body   DecisionRequest true "payload"
// @Success  200 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "bed conflict or stale version"
// @Failure  422 {object} ErrorResponse "invalid allocation"
// @Router   /admin/bookings/{id}/decision [post]
func (h *handlers) decideBooking(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	version, ok := parseIfMatch(c.GetHeader("If-Match"))
	if !ok {
		badRequest(c, "invalid If-Match")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := booking.DecideInput{
		BookingID: id,
		Decision:  domain.BookingStatus(req.Decision),
		IfVersion: version,
	}
	for _, a := range req.Allocations {
		in.Allocations = append(in.Allocations, domain.Allocation{
			PersonIndex: a.PersonIndex,
			BedID:       uuid.MustParse(a.BedID),
		})
	}
	if req.Notify != nil && !*req.Notify {
		in.Policy.Suppress = true
	}
	if req.NotifyAt != "" {
		at, err := nextClock(h.Clock.Now(), req.NotifyAt, h.Location)
		if err != nil {
			badRequest(c, "invalid notify_at")
			return
		}
		in.Policy.SendAt = &at
	}

	b, err := h.Services.Booking.Decide(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.Header("ETag", versionETag(b.Version))
	c.JSON(http.StatusOK, b)
}

// @Summary  Occupancy listing of an event
// @Tags     admin
// @Security BearerAuth
// @Param    event_id query string true  "Event ID (uuid)"
// @Param    day      query string false "YYYY-MM-DD; omitted lists the whole event"
// @Success  200 {array} OccupancyRow
// @Failure  400 {object} ErrorResponse
// @Router   /admin/occupancy [get]
func (h *handlers) listOccupancy(c *gin.Context) {
	eventID, err := uuid.Parse(c.Query("event_id"))
	if err != nil {
		badRequest(c, "invalid event_id")
		return
	}

	var day time.Time
	if s := c.Query("day"); s != "" {
		day, err = time.ParseInLocation(time.DateOnly, s, h.Location)
		if err != nil {
			badRequest(c, "invalid day (YYYY-MM-DD)")
			return
		}
	}

	recs, err := h.Services.Booking.ListOccupancy(c.Request.Context(), eventID, day)
	if err != nil {
		respondErr(c, err)
		return
	}

	rows, err := toOccupancyRows(recs)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// @Summary  Bed availability over a range
// @Tags     admin
// @Security BearerAuth
// @Param    from query string true "RFC3339 or YYYY-MM-DD"
// @Param    to   query string true "RFC3339 or YYYY-MM-DD, exclusive"
// @Success  200 {array} domain.BedAvailability
// @Failure  400 {object} ErrorResponse
// @Router   /admin/beds/availability [get]
func (h *handlers) bedAvailability(c *gin.Context) {
	from, err := h.parseTime(c.Query("from"))
	if err != nil {
		badRequest(c, "invalid from")
		return
	}
	to, err := h.parseTime(c.Query("to"))
	if err != nil {
		badRequest(c, "invalid to")
		return
	}

	beds, err := h.Services.Booking.BedAvailability(c.Request.Context(), from, to)
	if err != nil {
		respondErr(c, err)
		return
	}

	writeJSONWithCache(c, http.StatusOK, beds, "private, max-age=15")
}

func (h *handlers) parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, h.Location)
}

// @Summary  Send a notification to users, roles or everyone
// @Tags     admin
// @Security BearerAuth
// @Param    req body NotificationRequest true "payload"
// @Success  201 {object} NotificationResponse
// @Success  200 {object} NotificationResponse "no recipient resolved"
// @Failure  400 {object} ErrorResponse
// @Router   /admin/notifications [post]
func (h *handlers) sendNotification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sel := notify.Selector{Roles: req.Recipients.Roles, All: req.Recipients.All}
	for _, s := range req.Recipients.UserIDs {
		sel.UserIDs = append(sel.UserIDs, uuid.MustParse(s))
	}
	if sel.Empty() {
		badRequest(c, "no recipients")
		return
	}

	ttl := time.Duration(req.TTLMinutes) * time.Minute
	if ttl == 0 {
		ttl = h.BroadcastTTL
	}

	res, err := h.Services.Notify.Notify(c.Request.Context(), notify.Request{
		Message:  req.Message,
		Selector: sel,
		Target:   domain.TargetUser,
		SendAt:   req.SendAt,
		TTL:      ttl,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	if res.Created == 0 {
		c.JSON(http.StatusOK, NotificationResponse{})
		return
	}

	c.JSON(http.StatusCreated, NotificationResponse{
		Created:   res.Created,
		Status:    res.Status,
		SendAt:    &res.SendAt,
		ExpiresAt: &res.ExpiresAt,
	})
}
