package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/staff"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *staff.Service
}

func NewHandler(service *staff.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/staff", h.List)
	r.POST("/staff", h.Create)
}

func (h *Handler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	created, toast, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, created, toast)
}
