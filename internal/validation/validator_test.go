// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package validation

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	UserID           int `validate:"required,min=1"`
	ViewingProductID int `validate:"omitempty,min=1"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
	}{
		{"valid", sampleRequest{UserID: 7}, false},
		{"valid with context", sampleRequest{UserID: 7, ViewingProductID: 101}, false},
		{"missing user", sampleRequest{}, true},
		{"negative user", sampleRequest{UserID: -1}, true},
		{"negative product", sampleRequest{UserID: 7, ViewingProductID: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	err := ValidateStruct(&sampleRequest{UserID: -1})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	apiErr := ToAPIError(err)
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if _, ok := apiErr.Details["UserID"]; !ok {
		t.Errorf("Details missing UserID entry: %v", apiErr.Details)
	}
}

func TestToAPIErrorNonValidator(t *testing.T) {
	apiErr := ToAPIError(errors.New("boom"))
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "invalid request" {
		t.Errorf("unexpected translation: %+v", apiErr)
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar(5, "required,min=1"); err != nil {
		t.Errorf("ValidateVar(5) = %v, want nil", err)
	}
	if err := ValidateVar(0, "required,min=1"); err == nil {
		t.Error("ValidateVar(0) should fail")
	}
}
