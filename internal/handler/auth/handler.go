package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/service/auth"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/session"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

type Handler struct {
	service   *auth.Service
	codec     *session.Codec
	validator *validator.Validator
	limit     gin.HandlerFunc
}

// NewHandler wires the login routes; limit guards the login endpoint and may
// be nil
func NewHandler(service *auth.Service, codec *session.Codec, v *validator.Validator, limit gin.HandlerFunc) *Handler {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{service: service, codec: codec, validator: v, limit: limit}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.limit, h.Login)
		auth.POST("/logout", h.Logout)
	}
}

// RegisterAppRoutes registers the session-only routes behind the gate
func (h *Handler) RegisterAppRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
}

func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := handler.Bind(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	http.SetCookie(c.Writer, h.codec.Cookie(res.Cookie))
	httputil.RespondWithToast(c, gin.H{"user": res.User, "redirect": "/dashboard"}, &httputil.Toast{
		Type:  httputil.ToastSuccess,
		Title: "Bienvenido, " + res.User.Username,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if value, err := c.Cookie(h.codec.CookieName()); err == nil {
		if sess := h.codec.Decode(value); sess != nil {
			h.service.Logout(session.NewContext(c.Request.Context(), sess))
		}
	}
	http.SetCookie(c.Writer, h.codec.ExpiredCookie())
	httputil.RespondWithSuccess(c, gin.H{"redirect": "/login"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}
