// Package handler holds helpers shared by the resource handlers in its
// subpackages.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/pkg/errors"
)

// Registrar is implemented by every resource handler
type Registrar interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Bind decodes the JSON body into obj; malformed JSON is a BadRequest
func Bind(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return errors.BadRequest("Solicitud inválida", err)
	}
	return nil
}

// Date parses a YYYY-MM-DD query value in loc; empty yields the zero time
func Date(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, errors.Validation("Fecha inválida", map[string]string{"date": "Use el formato AAAA-MM-DD"})
	}
	return t, nil
}

// RegistrarFunc adapts a plain function to Registrar
type RegistrarFunc func(*gin.RouterGroup)

func (f RegistrarFunc) RegisterRoutes(r *gin.RouterGroup) {
	f(r)
}
