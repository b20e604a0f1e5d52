// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "strings"

// Language is one entry of the language selector offered to users. Code is
// the ISO 639-1 code passed to the metadata service.
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Languages is the fixed selector, in display order.
var Languages = []Language{
	{Name: "English", Code: "en"},
	{Name: "Hindi", Code: "hi"},
	{Name: "Spanish", Code: "es"},
	{Name: "French", Code: "fr"},
	{Name: "German", Code: "de"},
	{Name: "Japanese", Code: "ja"},
	{Name: "Korean", Code: "ko"},
	{Name: "Italian", Code: "it"},
	{Name: "Chinese", Code: "zh"},
	{Name: "Portuguese", Code: "pt"},
}

// DefaultLanguage is used when a query does not name one.
const DefaultLanguage = "en"

// Genres is the genre selector. Filtering accepts any string; these are the
// values offered in listings.
var Genres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime",
	"Drama", "Fantasy", "Horror", "Romance", "Thriller",
}

// IsSupportedLanguage reports whether code is in Languages.
func IsSupportedLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// LanguageCode resolves a selector value that may be either a code ("fr") or
// a display name ("French"). The second result is false for unknown values.
func LanguageCode(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, l := range Languages {
		if strings.EqualFold(l.Code, v) || strings.EqualFold(l.Name, v) {
			return l.Code, true
		}
	}
	return "", false
}
