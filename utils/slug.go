package utils

import (
	"regexp"
	"strings"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9\s]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// Slugify turns an event name into its event_id identifier: lowercase,
// punctuation stripped, whitespace collapsed to hyphens.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	return s
}
