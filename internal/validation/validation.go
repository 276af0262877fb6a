// Package validation wraps go-playground/validator so that failures come
// back as apperror validation errors named after JSON fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"admissions-service/common/apperror"

	"github.com/go-playground/validator/v10"
)

func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and converts any failure into a ValidationError whose
// details name each offending field.
func Struct(v *validator.Validate, s any, message string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("", message, err.Error())
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperror.Validation("", message, details...)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	case "gt", "min":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "eq", "oneof":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "dive":
		return field + " is invalid"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
