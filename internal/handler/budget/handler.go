package budget

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/service/budget"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *budget.Service
}

func NewHandler(service *budget.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	budgets := r.Group("/budgets")
	{
		budgets.GET("/:id", h.Get)
		budgets.GET("/:id/pdf", h.PDF)
	}
}

func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) PDF(c *gin.Context) {
	doc, err := h.service.ExportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	// non-ASCII surnames are sent as an RFC 2231 filename*
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}
