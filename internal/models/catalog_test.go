// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"en", "en", true},
		{"FR", "fr", true},
		{"Japanese", "ja", true},
		{" korean ", "ko", true},
		{"Klingon", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LanguageCode(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LanguageCode(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSelectors(t *testing.T) {
	if len(Languages) != 10 {
		t.Errorf("expected 10 languages, got %d", len(Languages))
	}
	if len(Genres) != 10 {
		t.Errorf("expected 10 genres, got %d", len(Genres))
	}
	if !IsSupportedLanguage(DefaultLanguage) {
		t.Error("default language must be supported")
	}
	if IsSupportedLanguage("English") {
		t.Error("IsSupportedLanguage takes codes, not names")
	}
}

func TestPlaceholderEnrichment(t *testing.T) {
	p := PlaceholderEnrichment()
	if p.PosterURL != PlaceholderPosterURL || p.ReleaseYear != "N/A" || p.Rating != "N/A" || p.Overview != NoOverview {
		t.Errorf("unexpected placeholder %+v", p)
	}
	if p.TrailerURL != "" {
		t.Error("placeholder must not carry a trailer")
	}
}
