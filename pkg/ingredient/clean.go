// Package ingredient normalises scraped ingredient names before they are stored.
package ingredient

import (
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)

	// applied in order, each at most once
	prefixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^di\s+`),
		regexp.MustCompile(`(?i)^del\s+`),
		regexp.MustCompile(`(?i)^della\s+`),
		regexp.MustCompile(`(?i)^dell\s+`),
		regexp.MustCompile(`(?i)^dell'\s*`),
	}
)

// CleanName collapses whitespace, drops a leading partitive preposition
// ("di", "del", "della", "dell'") and lower-cases the name.
func CleanName(name string) string {
	cleaned := spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	for _, re := range prefixRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.ToLower(cleaned)
}
