package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CacheConfig struct {
	MaxAge  int
	Private bool
	NoStore bool
	Vary    []string
}

// NoStoreConfig is used for everything behind the session gate
func NoStoreConfig() CacheConfig {
	return CacheConfig{Private: true, NoStore: true, Vary: []string{"Cookie"}}
}

// PublicConfig suits read-only public data such as booking options
func PublicConfig(maxAge int) CacheConfig {
	return CacheConfig{MaxAge: maxAge}
}

// Cache sets Cache-Control on GET responses; other methods are never cached
func Cache(config CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		var directives []string
		if config.Private {
			directives = append(directives, "private")
		} else {
			directives = append(directives, "public")
		}
		if config.NoStore {
			directives = append(directives, "no-store")
		} else if config.MaxAge > 0 {
			directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
		}
		c.Header("Cache-Control", strings.Join(directives, ", "))

		if len(config.Vary) > 0 {
			c.Header("Vary", strings.Join(config.Vary, ", "))
		}
		c.Next()
	}
}
