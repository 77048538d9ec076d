package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/backend"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

const ContextSession = "session"

type GateConfig struct {
	LoginPath string
	HomePath  string
	// Protected path prefixes; a prefix matches itself and its subpaths
	Protected []string
	// APIPrefix marks paths answered with 401 JSON instead of a redirect
	APIPrefix string
}

// Gate decides for every request whether to pass, redirect or reject based
// on the session cookie.
type Gate struct {
	codec *session.Codec
	cfg   GateConfig
}

func NewGate(codec *session.Codec, cfg GateConfig) *Gate {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/dashboard"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}
	return &Gate{codec: codec, cfg: cfg}
}

func (g *Gate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		sess := g.session(c)

		if sess != nil {
			ctx := session.NewContext(c.Request.Context(), sess)
			ctx = backend.WithToken(ctx, sess.Token)
			c.Request = c.Request.WithContext(ctx)
			c.Set(ContextSession, sess)

			if path == g.cfg.LoginPath || path == "/" {
				c.Redirect(http.StatusTemporaryRedirect, g.cfg.HomePath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if path == "/" {
			c.Redirect(http.StatusTemporaryRedirect, g.cfg.LoginPath)
			c.Abort()
			return
		}

		if g.protected(path) {
			if strings.HasPrefix(path, g.cfg.APIPrefix) {
				httputil.RespondWithError(c, errors.Unauthorized("Sesión expirada, inicie sesión nuevamente", nil))
				return
			}
			c.Redirect(http.StatusTemporaryRedirect, g.cfg.LoginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}

// session returns the decoded cookie; an invalid cookie is cleared
func (g *Gate) session(c *gin.Context) *session.Session {
	value, err := c.Cookie(g.codec.CookieName())
	if err != nil || value == "" {
		return nil
	}
	sess := g.codec.Decode(value)
	if sess == nil {
		http.SetCookie(c.Writer, g.codec.ExpiredCookie())
	}
	return sess
}

func (g *Gate) protected(path string) bool {
	for _, prefix := range g.cfg.Protected {
		if path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
