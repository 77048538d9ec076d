package activity

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/datatable"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

// fetched is how many recent entries the table works on
const fetched = 500

var table = datatable.New(func(e *model.ActivityEntry) string { return e.ID },
	datatable.Column[*model.ActivityEntry]{ID: "created_at", Header: "Fecha", Value: func(e *model.ActivityEntry) any { return e.CreatedAt }, Sortable: true},
	datatable.Column[*model.ActivityEntry]{ID: "username", Header: "Usuario", Value: func(e *model.ActivityEntry) any { return e.Username }, Sortable: true, Filterable: true},
	datatable.Column[*model.ActivityEntry]{ID: "action", Header: "Acción", Value: func(e *model.ActivityEntry) any { return string(e.Action) }, Sortable: true, Filterable: true},
	datatable.Column[*model.ActivityEntry]{ID: "entity", Header: "Registro", Value: func(e *model.ActivityEntry) any { return e.EntityType + " " + e.EntityID }, Filterable: true, Hideable: true},
	datatable.Column[*model.ActivityEntry]{ID: "details", Header: "Detalle", Value: func(e *model.ActivityEntry) any { return e.Details }, Filterable: true, Hideable: true},
)

type Handler struct {
	service *activity.Service
}

func NewHandler(service *activity.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/activity", h.List)
}

func (h *Handler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), fetched)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	q := c.Request.URL.Query()
	if q.Get("sort") == "" {
		q.Set("sort", "-created_at")
	}
	httputil.RespondWithSuccess(c, table.Apply(entries, datatable.StateFromQuery(q, "action")))
}
