package valueobjects

import (
	"net/url"
	"strings"
)

// excludedNamespaces lists colon-delimited title prefixes that never become
// graph nodes: media, project, and discussion namespaces.
var excludedNamespaces = map[string]bool{
	"file":           true,
	"image":          true,
	"category":       true,
	"template":       true,
	"help":           true,
	"wikipedia":      true,
	"portal":         true,
	"special":        true,
	"draft":          true,
	"mediawiki":      true,
	"user":           true,
	"talk":           true,
	"user talk":      true,
	"file talk":      true,
	"category talk":  true,
	"template talk":  true,
	"help talk":      true,
	"wikipedia talk": true,
	"portal talk":    true,
	"draft talk":     true,
	"mediawiki talk": true,
}

// NormalizeTitle converts a raw article title into comparison form:
// underscores become spaces, runs of whitespace collapse, ends are trimmed.
// Both link lists and lookup keys must pass through here; comparing a
// normalized key against an unnormalized one is a correctness bug.
func NormalizeTitle(raw string) string {
	title := strings.ReplaceAll(raw, "_", " ")
	title = strings.Join(strings.Fields(title), " ")
	return title
}

// ParseQuery turns a user-supplied query into a title suitable for lookup.
// Accepts a plain title, an underscored title, or a full article URL of the
// form https://host/wiki/Some_Title.
func ParseQuery(query string) string {
	query = strings.TrimSpace(query)

	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		if parsed, err := url.Parse(query); err == nil {
			if idx := strings.Index(parsed.Path, "/wiki/"); idx >= 0 {
				segment := parsed.Path[idx+len("/wiki/"):]
				if decoded, err := url.PathUnescape(segment); err == nil {
					segment = decoded
				}
				return NormalizeTitle(segment)
			}
		}
	}

	return NormalizeTitle(query)
}

// IsSubstantiveLink reports whether a link title refers to an actual article
// rather than a meta-namespace page. Titles shorter than two characters are
// rejected outright.
func IsSubstantiveLink(title string) bool {
	normalized := NormalizeTitle(title)
	if len(normalized) < 2 {
		return false
	}

	if idx := strings.Index(normalized, ":"); idx > 0 {
		prefix := strings.ToLower(strings.TrimSpace(normalized[:idx]))
		if excludedNamespaces[prefix] {
			return false
		}
	}

	return true
}

// FilterSubstantiveLinks returns the subset of titles that pass
// IsSubstantiveLink, normalized, preserving order and dropping duplicates.
func FilterSubstantiveLinks(titles []string) []string {
	result := make([]string, 0, len(titles))
	seen := make(map[string]bool, len(titles))

	for _, raw := range titles {
		if !IsSubstantiveLink(raw) {
			continue
		}
		normalized := NormalizeTitle(raw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}
