package reschedule

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/service/reschedule"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *reschedule.Service
}

func NewHandler(service *reschedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	dialogs := r.Group("/reschedules")
	{
		dialogs.POST("", h.Open)
		dialogs.GET("/:id", h.Get)
		dialogs.PATCH("/:id", h.Update)
		dialogs.POST("/:id/next", h.Next)
		dialogs.POST("/:id/back", h.Back)
		dialogs.PUT("/:id/should-delete", h.SetShouldDelete)
		dialogs.POST("/:id/confirm", h.Confirm)
		dialogs.DELETE("/:id", h.Close)
	}
}

type openRequest struct {
	AppointmentID string `json:"appointment_id"`
}

func (h *Handler) Open(c *gin.Context) {
	var req openRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if req.AppointmentID == "" {
		httputil.RespondWithError(c, errors.Validation("Seleccione una cita", map[string]string{"appointment_id": "Este campo es obligatorio"}))
		return
	}
	view, err := h.service.Open(c.Request.Context(), req.AppointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, view, nil)
}

func (h *Handler) Get(c *gin.Context) {
	h.respond(c)(h.service.Get(c.Request.Context(), c.Param("id")))
}

func (h *Handler) Update(c *gin.Context) {
	var sel reschedule.Selection
	if err := handler.Bind(c, &sel); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respond(c)(h.service.Update(c.Request.Context(), c.Param("id"), sel))
}

func (h *Handler) Next(c *gin.Context) {
	h.respond(c)(h.service.Next(c.Request.Context(), c.Param("id")))
}

func (h *Handler) Back(c *gin.Context) {
	h.respond(c)(h.service.Back(c.Request.Context(), c.Param("id")))
}

type shouldDeleteRequest struct {
	ShouldDelete bool `json:"should_delete"`
}

func (h *Handler) SetShouldDelete(c *gin.Context) {
	var req shouldDeleteRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respond(c)(h.service.SetShouldDelete(c.Request.Context(), c.Param("id"), req.ShouldDelete))
}

func (h *Handler) Confirm(c *gin.Context) {
	res, err := h.service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithErrorToast(c, err, &httputil.Toast{
			Type:        httputil.ToastError,
			Title:       "No se pudo reprogramar la cita",
			Description: errorMessage(err),
		})
		return
	}
	httputil.RespondWithToast(c, res, res.Toast)
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"state": reschedule.StateClosed})
}

func (h *Handler) respond(c *gin.Context) func(*reschedule.View, error) {
	return func(v *reschedule.View, err error) {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, v)
	}
}

func errorMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Message
	}
	return "Intente nuevamente"
}
