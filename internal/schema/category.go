package schema

import "strings"

// sourceDelimiter separates hierarchy levels in raw source categories,
// e.g. "Electronics > Audio > Headphones".
const sourceDelimiter = ">"

// NormalizeCategory converts a raw hierarchical category string to its
// target form. Hierarchical output joins the trimmed segments with the
// configured separator; flat output keeps only the trimmed last segment.
func NormalizeCategory(source string, format CategoryFormat, separator string) string {
	segments := strings.Split(source, sourceDelimiter)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	if format == FormatFlat {
		return segments[len(segments)-1]
	}
	return strings.Join(segments, separator)
}

// AutoGenerateCategories builds a category mapping table for the given
// source categories. Targets a user already hand-edited are preserved by
// exact source lookup; only new sources get freshly computed values.
// Source order is preserved and duplicates are dropped.
func AutoGenerateCategories(sources []string, existing []CategoryMapping, format CategoryFormat, separator string) []CategoryMapping {
	prior := make(map[string]string, len(existing))
	for _, m := range existing {
		prior[m.SourceCategory] = m.TargetCategory
	}

	seen := make(map[string]bool, len(sources))
	out := make([]CategoryMapping, 0, len(sources))
	for _, source := range sources {
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true

		target, ok := prior[source]
		if !ok || target == "" {
			target = NormalizeCategory(source, format, separator)
		}
		out = append(out, CategoryMapping{SourceCategory: source, TargetCategory: target})
	}
	return out
}
