// Package slug turns display names into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var asciiSlug = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Make derives a slug from s. Letters of any script, digits and underscores
// are kept, runs of whitespace and hyphens collapse to one hyphen, everything
// else is dropped. The result is lower case and never starts or ends with a
// hyphen or underscore. Make is deterministic: equal input gives equal output.
func Make(s string) string {
	s = cases.Lower(language.Und).String(norm.NFKC.String(s))

	var b strings.Builder
	separate := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			if separate && b.Len() > 0 {
				b.WriteByte('-')
			}
			separate = false
			b.WriteRune(r)
		case r == '-', unicode.IsSpace(r):
			separate = true
		}
	}
	return strings.Trim(b.String(), "-_")
}

// Valid reports whether s is an ASCII slug usable as a unique key in URLs.
func Valid(s string) bool {
	return asciiSlug.MatchString(s)
}
