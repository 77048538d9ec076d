package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/dental-admin/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

// Validator wraps go-playground/validator with JSON field names, the custom
// tags used by the admin forms and Spanish field messages.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))

	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Engine exposes the underlying validator for custom registrations
func (v *Validator) Engine() *validator.Validate {
	return v.v
}

// Validate returns nil or a Validation AppError with one message per field
func (v *Validator) Validate(obj interface{}) error {
	err := v.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest("invalid request", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return errors.Validation("Revise los campos del formulario", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return "Este campo es obligatorio"
	case "email":
		return "Ingrese un correo electrónico válido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser al menos %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("No debe exceder %s caracteres", fe.Param())
		}
		return fmt.Sprintf("No debe exceder %s", fe.Param())
	case "gt", "gtfield":
		return "El valor es demasiado bajo"
	case "oneof":
		return fmt.Sprintf("Debe ser uno de: %s", fe.Param())
	case "date":
		return "Fecha inválida (AAAA-MM-DD)"
	case "clock":
		return "Hora inválida (HH:MM)"
	case "phone":
		return "Ingrese un número de teléfono válido"
	default:
		return "Valor inválido"
	}
}
