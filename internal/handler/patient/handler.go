package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/patient"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.List)
		patients.GET("/:id", h.Get)
		patients.POST("/:id/tags", h.AddTag)
		patients.DELETE("/:id/tags/:tag", h.RemoveTag)
		patients.PUT("/:id/notes", h.UpdateNotes)
		patients.PUT("/:id/medical-history", h.UpdateMedicalHistory)
	}
}

func (h *Handler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"patient": p, "tags": model.Tags, "questionnaire": model.Questionnaire})
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) AddTag(c *gin.Context) {
	var req tagRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	res, err := h.service.AddTag(c.Request.Context(), c.Param("id"), req.Tag)
	if err != nil {
		if errors.IsKind(err, errors.KindConflict) {
			httputil.RespondWithErrorToast(c, err, &httputil.Toast{
				Type:        httputil.ToastWarning,
				Title:       "Etiqueta duplicada",
				Description: "El paciente ya tiene la etiqueta " + req.Tag,
			})
			return
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithToast(c, res.Patient, res.Toast)
}

func (h *Handler) RemoveTag(c *gin.Context) {
	res, err := h.service.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithToast(c, res.Patient, res.Toast)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	var req notesRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	res, err := h.service.UpdateNotes(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithToast(c, res.Patient, res.Toast)
}

type historyRequest struct {
	Answers []model.MedicalAnswer `json:"answers"`
}

func (h *Handler) UpdateMedicalHistory(c *gin.Context) {
	var req historyRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	res, err := h.service.UpdateMedicalHistory(c.Request.Context(), c.Param("id"), req.Answers)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithToast(c, res.Patient, res.Toast)
}
