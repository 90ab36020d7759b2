// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package validation provides struct validation using
// go-playground/validator v10 behind a thread-safe singleton, with
// error translation to the API's VALIDATION_ERROR shape.
//
// Example:
//
//	type RecommendRequest struct {
//	    UserID           int `validate:"required,min=1"`
//	    ViewingProductID int `validate:"omitempty,min=1"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := validation.ToAPIError(err)
//	    ...
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/shelfline/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the singleton validator. The validator caches struct
// metadata, so a single shared instance is both safe and faster.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct against its `validate` tags.
// Returns nil when valid.
func ValidateStruct(s interface{}) error {
	return instance().Struct(s)
}

// ValidateVar validates a single value against a tag expression, e.g.
// ValidateVar(userID, "required,min=1").
func ValidateVar(value interface{}, tag string) error {
	return instance().Var(value, tag)
}

// ToAPIError translates a validator error into the structured
// VALIDATION_ERROR used by the HTTP layer. Non-validator errors get a
// generic message so internal detail never leaks to clients.
func ToAPIError(err error) *models.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &models.APIError{
			Code:    "VALIDATION_ERROR",
			Message: "invalid request",
		}
	}

	fields := make([]string, 0, len(verrs))
	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		details[fe.Field()] = describe(fe)
	}

	return &models.APIError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed on: %s", strings.Join(fields, ", ")),
		Details: details,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
