package usecases

import (
	"errors"
	"reflect"
	"strings"

	"ecotracker/errs"

	"github.com/go-playground/validator/v10"
)

var inputValidate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// validateInput checks struct tags and reports the first failing field.
func validateInput(in interface{}) error {
	err := inputValidate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewValidationError("body", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewValidationError(fe.Field(), "is required")
	case "email":
		return errs.NewValidationError(fe.Field(), "must be a valid email address")
	case "min":
		return errs.NewValidationError(fe.Field(), "must be at least "+fe.Param()+" characters")
	case "max":
		return errs.NewValidationError(fe.Field(), "must be at most "+fe.Param()+" characters")
	case "mac":
		return errs.NewValidationError(fe.Field(), "must be a MAC address")
	case "ip":
		return errs.NewValidationError(fe.Field(), "must be an IP address")
	default:
		return errs.NewValidationError(fe.Field(), "failed "+fe.Tag())
	}
}
