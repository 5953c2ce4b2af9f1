// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slug derives filesystem- and URL-safe identifiers from titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Make lowercases s, drops everything except ASCII word characters,
// whitespace and hyphens, and collapses each run of whitespace and hyphens
// into a single hyphen. The result never begins or ends with a hyphen.
// Make(Make(s)) == Make(s) for every s.
func Make(s string) string {
	s = disallowed.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// PersonFile returns the legacy people file stem: the full name with every
// space replaced by a hyphen, case and punctuation untouched.
func PersonFile(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}
