package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// ErrVersionFormat is the exact message shown when a version string is not
// semantic-version shaped. Forms block submission on it before any network
// call is made.
const ErrVersionFormat = "Version should follow semantic versioning (e.g., 1.0.0)"

var (
	semverRe        = regexp.MustCompile(`(?i)^\d+\.\d+\.\d+(-[a-z0-9.]+)?$`)
	componentNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,50}$`)
	tagRe           = regexp.MustCompile(`^[a-z0-9-]{2,30}$`)
	slugStripRe     = regexp.MustCompile(`[^\w\s-]`)
	slugDashRe      = regexp.MustCompile(`[\s_-]+`)
)

// IsValidVersion reports whether a version string follows semantic
// versioning (e.g. 1.0.0, 2.3.1-beta).
func IsValidVersion(version string) bool {
	return semverRe.MatchString(version)
}

// IsValidURL reports whether s parses as an absolute URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// IsValidComponentName reports whether a component name is acceptable:
// 2-50 characters of alphanumerics, hyphens and underscores.
func IsValidComponentName(name string) bool {
	return componentNameRe.MatchString(name)
}

// IsValidTag reports whether a tag is acceptable: 2-30 lowercase
// alphanumerics and hyphens.
func IsValidTag(tag string) bool {
	return tagRe.MatchString(tag)
}

// Slugify lowercases and hyphenates text the way the backend derives slugs,
// so the client can show the routing key a new component will get.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseTags splits comma-separated input into cleaned tags, dropping
// anything that fails validation.
func ParseTags(input string) []string {
	var tags []string
	for _, part := range strings.Split(input, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" && IsValidTag(tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseFrameworks splits comma-separated framework input, lowercased and
// trimmed. Unlike tags there is no format restriction.
func ParseFrameworks(input string) []string {
	var fws []string
	for _, part := range strings.Split(input, ",") {
		fw := strings.ToLower(strings.TrimSpace(part))
		if fw != "" {
			fws = append(fws, fw)
		}
	}
	return fws
}
