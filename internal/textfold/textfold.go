// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package textfold maps titles and tags to the form they are compared and
// cached under.
package textfold

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold maps s to its comparison form: NFC-normalized and Unicode
// case-folded, so "Amélie" typed with a combining accent still matches.
// A Caser is stateful, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
