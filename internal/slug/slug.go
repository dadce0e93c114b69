// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns topic names into filesystem- and URL-safe key
// fragments for archived artifacts.
package slug

import (
	"strings"
	"unicode"
)

// Generate creates a lowercase hyphenated slug from the given string.
// Example: "Running a Lightning node!" → "running-a-lightning-node".
func Generate(s string) string {
	var b strings.Builder
	lastHyphen := true // trims leading separators

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
