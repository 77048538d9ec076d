package calendar

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/action"
	"github.com/jwalitptl/dental-admin/internal/service/calendar"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *calendar.Service
	loc     *time.Location
}

func NewHandler(service *calendar.Service, loc *time.Location) *Handler {
	return &Handler{service: service, loc: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cal := r.Group("/calendar")
	{
		cal.GET("", h.Events)
		cal.POST("/slots", h.SelectSlot)
		cal.GET("/events/:id", h.SelectEvent)
		cal.PUT("/events", h.Save)
	}
}

func (h *Handler) Events(c *gin.Context) {
	view, err := calendar.ParseView(c.Query("view"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("Vista inválida", map[string]string{"view": err.Error()}))
		return
	}
	anchor, err := handler.Date(c.Query("date"), h.loc)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cal, err := h.service.Events(c.Request.Context(), view, anchor)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cal)
}

type slotRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *Handler) SelectSlot(c *gin.Context) {
	var req slotRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	draft, err := h.service.SelectSlot(c.Request.Context(), req.Start.In(h.loc), req.End.In(h.loc))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation(err.Error(), map[string]string{"end": err.Error()}))
		return
	}
	httputil.RespondWithSuccess(c, draft)
}

func (h *Handler) SelectEvent(c *gin.Context) {
	a, err := h.service.SelectEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"appointment": a, "actions": action.Menu(a)})
}

func (h *Handler) Save(c *gin.Context) {
	var a model.Appointment
	if err := handler.Bind(c, &a); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if a.Status == "" {
		a.Status = model.StatusPending
	}

	res, err := h.service.Save(c.Request.Context(), &a)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if res.Outcome == calendar.OutcomeCreated {
		httputil.RespondCreated(c, res, res.Toast)
		return
	}
	httputil.RespondWithToast(c, res, res.Toast)
}
