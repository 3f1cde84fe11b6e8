package services

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag; complaint and comment bodies are plain text
var textPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds how many entity layers are peeled off
const maxSanitizePasses = 8

// SanitizeText removes markup and surrounding whitespace from user input.
// Entities are decoded and the result sanitised again until it is stable, so
// markup smuggled in as entities cannot survive.
func SanitizeText(s string) string {
	out := s
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(textPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(textPolicy.Sanitize(out))
}

// checkLength validates the rune length of an already sanitised value
func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		if min == 1 {
			return invalid(field, "is required")
		}
		return invalid(field, "must be at least %d characters", min)
	}
	if n > max {
		return invalid(field, "must be at most %d characters", max)
	}
	return nil
}
