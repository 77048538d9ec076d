package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

type SecurityConfig struct {
	HSTS          bool
	HSTSMaxAge    int
	FrameOptions  string
	CSPDirectives []string
}

func DefaultSecurityConfig(hsts bool) SecurityConfig {
	return SecurityConfig{
		HSTS:         hsts,
		HSTSMaxAge:   31536000,
		FrameOptions: "DENY",
		CSPDirectives: []string{
			"default-src 'self'",
			"img-src 'self' data:",
			"frame-ancestors 'none'",
		},
	}
}

func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.HSTS {
			c.Header("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge))
		}
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if len(config.CSPDirectives) > 0 {
			c.Header("Content-Security-Policy", strings.Join(config.CSPDirectives, "; "))
		}
		c.Next()
	}
}
