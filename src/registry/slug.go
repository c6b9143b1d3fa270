package registry

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultSlug is used when a name has no slug-safe characters
	DefaultSlug = "untitled"
	// MaxSlugLength bounds the length of a slug
	MaxSlugLength = 50
)

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
)

// Slugify converts a display name into a URL-safe slug
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = unsafeChars.ReplaceAllString(slug, "")
	slug = whitespace.ReplaceAllString(slug, "-")
	slug = hyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// GenerateUniqueSlug returns the slug for name, suffixed -2, -3, ... until it is not in existing
func GenerateUniqueSlug(name string, existing map[string]bool) string {
	base := Slugify(name)
	if !existing[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !existing[candidate] {
			return candidate
		}
	}
}
