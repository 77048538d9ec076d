package booking

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/service/booking"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *booking.Service
	limit   gin.HandlerFunc
}

func NewHandler(service *booking.Service, limit gin.HandlerFunc) *Handler {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{service: service, limit: limit}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/public/bookings")
	{
		bookings.GET("/options", h.Options)
		bookings.POST("", h.limit, h.Submit)
	}
}

func (h *Handler) Options(c *gin.Context) {
	opts, err := h.service.Options(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, opts)
}

func (h *Handler) Submit(c *gin.Context) {
	var req booking.Request
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	conf, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, gin.H{"reference": conf.Reference}, conf.Toast)
}
