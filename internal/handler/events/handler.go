package events

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

// Invalidator drops a user's cached calendar
type Invalidator interface {
	Invalidate(userID string)
}

// Handler streams appointment events to open calendars as server-sent
// events so they reload after changes made elsewhere
type Handler struct {
	broker    messaging.Broker
	calendars Invalidator
	heartbeat time.Duration
	logger    zerolog.Logger
}

func NewHandler(broker messaging.Broker, calendars Invalidator, logger zerolog.Logger) *Handler {
	return &Handler{
		broker:    broker,
		calendars: calendars,
		heartbeat: 25 * time.Second,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/events", h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	user := session.UserFromContext(ctx)

	msgs, err := h.broker.Subscribe(ctx, messaging.ChannelAppointments)
	if err != nil {
		h.logger.Error().Err(err).Msg("subscribe failed")
		httputil.RespondWithError(c, errors.Unavailable("Eventos no disponibles", err))
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case payload, ok := <-msgs:
			if !ok {
				return false
			}
			var evt messaging.Event
			if err := json.Unmarshal(payload, &evt); err != nil {
				h.logger.Warn().Err(err).Msg("dropping malformed event")
				return true
			}
			if evt.Reload && h.calendars != nil {
				h.calendars.Invalidate(user.UUID)
			}
			c.SSEvent(evt.Type, evt)
			return true
		}
	})
}
