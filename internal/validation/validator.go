// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/reportkit/internal/models"
)

// CodeValidation is the APIError code for failed request validation.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule. Field is the JSON name of the field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every failed rule of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

// Errors returns the failed rules in struct order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.Fields
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts to the response error body. A single failure keeps
// its field, tag and value in Details; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	switch len(ve.Fields) {
	case 0:
		return &models.APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		fe := ve.Fields[0]
		return &models.APIError{
			Code:    CodeValidation,
			Message: fe.Message,
			Details: map[string]interface{}{
				"field": fe.Field,
				"tag":   fe.Tag,
				"value": fe.Value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.Fields))
	messages := make([]string, len(ve.Fields))
	for i, fe := range ve.Fields {
		fields[i] = map[string]interface{}{
			"field":   fe.Field,
			"tag":     fe.Tag,
			"message": fe.Message,
		}
		messages[i] = fe.Message
	}
	return &models.APIError{
		Code:    CodeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator with the report tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)

		for tag, fn := range reportTags {
			if err := validate.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("validation: register %s: %v", tag, err))
			}
		}
	})
	return validate
}

// jsonFieldName reports fields by their wire name so messages match the
// request body. Fields without a json tag keep their Go name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// reportTags check string fields against the report enums. Empty values
// pass so the tags compose with omitempty and required.
var reportTags = map[string]validator.Func{
	"charttype": enumTag(func(v string) bool { return models.ChartType(v).Valid() }),
	"interval":  enumTag(func(v string) bool { return models.Interval(v).Valid() }),
	"daterange": enumTag(func(v string) bool { return models.DateRange(v).Valid() }),
	"metric":    enumTag(func(v string) bool { return models.Metric(v).Valid() }),
	"segment":   enumTag(func(v string) bool { return models.Segment(v).Valid() }),
}

func enumTag(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		v := f.String()
		return v == "" || valid(v)
	}
}

// ValidateStruct validates s and returns nil or the collected failures.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "request", Tag: "invalid", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

var tagMessages = map[string]string{
	"required":  "%s is required",
	"charttype": "%s must be a known chart type",
	"interval":  "%s must be one of: minute hour day week month",
	"daterange": "%s must be a known date range",
	"metric":    "%s must be one of: sum average min max count",
	"segment":   "%s must be a known segment",
}

var paramMessages = map[string]string{
	"oneof":       "%s must be one of: %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"gt":          "%s must be greater than %s",
	"lt":          "%s must be less than %s",
	"required_if": "%s is required when %s",
	"excludesall": "%s must not contain any of: %s",
}

func message(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := tagMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
