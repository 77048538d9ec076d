package action

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/service/action"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *action.Service
}

func NewHandler(service *action.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments/:id/actions")
	{
		appointments.GET("", h.Menu)
		appointments.POST("/:kind", h.Execute)
	}
}

func (h *Handler) Menu(c *gin.Context) {
	a, items, err := h.service.Menu(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"appointment": a, "actions": items})
}

func (h *Handler) Execute(c *gin.Context) {
	kind, err := action.ParseKind(c.Param("kind"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound("action", err))
		return
	}
	res, err := h.service.Execute(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithToast(c, res, res.Toast)
}
