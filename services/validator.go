package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ecotracker/errs"

	"github.com/go-playground/validator/v10"
)

// ReadingInput is a validated device payload. Absent metrics stay nil.
type ReadingInput struct {
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=-40,lte=80"`
	Humidity    *float64 `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	AirQuality  *int     `json:"airQuality" validate:"omitempty,gte=0,lte=1000"`
	// Device clock in unix milliseconds; informational only.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

var readingValidate = newReadingValidator()

func newReadingValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateReading decodes and bounds-checks a raw sensor payload. It reports
// the first offending field as an *errs.ValidationError.
func ValidateReading(raw []byte) (ReadingInput, error) {
	var in ReadingInput

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return in, errs.NewValidationError("body", "expected a JSON object")
	}

	if err := json.Unmarshal(trimmed, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ReadingInput{}, errs.NewValidationError(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeName(typeErr.Type), typeErr.Value))
		}
		return ReadingInput{}, errs.NewValidationError("body", "malformed JSON")
	}

	if err := readingValidate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ReadingInput{}, errs.NewValidationError(fe.Field(), reasonFor(fe))
		}
		return ReadingInput{}, errs.NewValidationError("body", err.Error())
	}

	return in, nil
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return "an integer"
	case reflect.Float64:
		return "a number"
	default:
		return t.String()
	}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
