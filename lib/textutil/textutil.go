package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseSpace trims s and turns every whitespace run into one space.
func CollapseSpace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// SameTitle compares two post titles the way the site displays them,
// the site trims and collapses whitespace in titles it stores.
func SameTitle(a, b string) bool {
	return CollapseSpace(a) == CollapseSpace(b)
}
