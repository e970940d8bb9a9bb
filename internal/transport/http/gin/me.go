package httpgin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

const streamHeartbeat = 25 * time.Second

// @Summary  Own notifications that are due and not expired
// @Tags     notifications
// @Security BearerAuth
// @Success  200 {array} domain.Notification
// @Router   /me/notifications [get]
func (h *handlers) listMyNotifications(c *gin.Context) {
	ns, err := h.Services.Notify.ListForRecipient(c.Request.Context(), mustPrincipal(c).UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ns)
}

// @Summary  Live notification stream (server-sent events)
// @Tags     notifications
// @Security BearerAuth
// @Produce  text/event-stream
// @Success  200 {object} domain.Notification "event: notification"
// @Failure  501 {object} ErrorResponse "live stream not configured"
// @Router   /me/notifications/stream [get]
func (h *handlers) streamMyNotifications(c *gin.Context) {
	if h.Stream == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "live stream not configured", Kind: "unavailable"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	userID := mustPrincipal(c).UserID
	ch := make(chan domain.Notification, 16)

	go func() {
		defer close(ch)
		err := h.Stream.Subscribe(ctx, userID, func(ctx context.Context, n domain.Notification) {
			select {
			case ch <- n:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			h.Logger.Warn("notification stream ended", "user_id", userID, "error", err)
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("notification", n)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		}
	}
}

// @Summary  Register a push endpoint
// @Tags     notifications
// @Security BearerAuth
// @Param    req body PushEndpointRequest true "payload"
// @Success  201 {object} domain.PushEndpoint
// @Failure  400 {object} ErrorResponse
// @Router   /me/push-endpoints [post]
func (h *handlers) registerPushEndpoint(c *gin.Context) {
	var req PushEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ep, err := h.Services.Notify.RegisterEndpoint(
		c.Request.Context(),
		mustPrincipal(c).UserID,
		domain.PushPlatform(req.Platform),
		req.Token,
	)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, ep)
}

// @Summary  Remove an own push endpoint
// @Tags     notifications
// @Security BearerAuth
// @Param    id path string true "Endpoint ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /me/push-endpoints/{id} [delete]
func (h *handlers) removePushEndpoint(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.Services.Notify.RemoveEndpoint(c.Request.Context(), id, mustPrincipal(c).UserID); err != nil {
		respondErr(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
