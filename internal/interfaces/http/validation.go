package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError detalle de un campo inválido; solo se registra en el log, la respuesta es genérica.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Validator envuelve validator/v10 usando los nombres JSON de los campos.
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador de DTOs.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct valida s y devuelve los campos inválidos, o nil si es válido.
func (val *Validator) Struct(s any) ([]FieldError, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field: strings.TrimPrefix(e.Namespace(), rootNamespace(e)),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}
	return out, err
}

// rootNamespace prefijo "Struct." que validator agrega al namespace.
func rootNamespace(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
