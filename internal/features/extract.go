// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package features turns raw joined rows into MovieRecords and tag documents.
//
// Extraction never fails. A value that cannot be parsed yields an empty
// FieldResult carrying a Reason, which the builder counts and logs.
package features

import (
	"strings"

	"github.com/goccy/go-json"
)

// Degradation reasons.
const (
	ReasonMissing   = "missing"   // raw value empty
	ReasonMalformed = "malformed" // not a JSON list of objects
	ReasonNoName    = "no_name"   // an entry lacks a string name
)

// FieldResult is the outcome of extracting one list field.
type FieldResult struct {
	Values []string
	Reason string
}

// Degraded reports whether the field fell back to empty because of bad input.
func (r FieldResult) Degraded() bool {
	return r.Reason != ""
}

// entity is an element of the TMDB list-of-object columns. Name is a pointer
// so a missing key can be told apart from an empty one.
type entity struct {
	Name *string `json:"name"`
	Job  string  `json:"job"`
}

func parseEntities(raw string) ([]entity, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ReasonMissing
	}
	var list []entity
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, ReasonMalformed
	}
	return list, ""
}

// ExtractNames returns the name of every entry of a genres or keywords list,
// in order. An entry without a name makes the whole field degrade.
func ExtractNames(raw string) FieldResult {
	list, reason := parseEntities(raw)
	if reason != "" {
		return FieldResult{Reason: reason}
	}
	names := make([]string, 0, len(list))
	for _, e := range list {
		if e.Name == nil {
			return FieldResult{Reason: ReasonNoName}
		}
		names = append(names, *e.Name)
	}
	return FieldResult{Values: names}
}

// ExtractCast returns the first limit names of a cast list in billing order.
func ExtractCast(raw string, limit int) FieldResult {
	res := ExtractNames(raw)
	if limit >= 0 && len(res.Values) > limit {
		res.Values = res.Values[:limit]
	}
	return res
}

// ExtractDirector returns the name of the first crew entry whose job is
// exactly "Director". A crew without one is not a degradation.
func ExtractDirector(raw string) FieldResult {
	list, reason := parseEntities(raw)
	if reason != "" {
		return FieldResult{Reason: reason}
	}
	for _, e := range list {
		if e.Job != "Director" {
			continue
		}
		if e.Name == nil {
			return FieldResult{Reason: ReasonNoName}
		}
		return FieldResult{Values: []string{*e.Name}}
	}
	return FieldResult{}
}
