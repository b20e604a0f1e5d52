// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Title    string `query:"title" validate:"required,max=20"`
	Language string `query:"lang" validate:"language"`
	Limit    int    `query:"k" validate:"min=1,max=50"`
	Mode     string `json:"mode" validate:"omitempty,oneof=fast slow"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantErr   bool
		wantField string
		wantTag   string
	}{
		{
			name: "valid",
			req:  sampleRequest{Title: "Avatar", Language: "fr", Limit: 10},
		},
		{
			name: "empty language allowed",
			req:  sampleRequest{Title: "Avatar", Limit: 10},
		},
		{
			name:      "missing title",
			req:       sampleRequest{Limit: 10},
			wantErr:   true,
			wantField: "title",
			wantTag:   "required",
		},
		{
			name:      "unknown language",
			req:       sampleRequest{Title: "Avatar", Language: "xx", Limit: 10},
			wantErr:   true,
			wantField: "lang",
			wantTag:   "language",
		},
		{
			name:      "limit too large",
			req:       sampleRequest{Title: "Avatar", Limit: 51},
			wantErr:   true,
			wantField: "k",
			wantTag:   "max",
		},
		{
			name:      "bad enum uses json tag",
			req:       sampleRequest{Title: "Avatar", Limit: 1, Mode: "medium"},
			wantErr:   true,
			wantField: "mode",
			wantTag:   "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if !tt.wantErr {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("field = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("tag = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	verr := ValidateStruct(&sampleRequest{Language: "xx", Limit: 0})
	if verr == nil {
		t.Fatal("expected errors")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("expected fields detail, got %#v", apiErr.Details)
	}
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(fields))
	}
	for _, want := range []string{"title is required", "lang must be a supported language code", "k must be at least 1"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("message %q missing %q", apiErr.Message, want)
		}
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}
