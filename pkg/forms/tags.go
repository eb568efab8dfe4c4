package forms

import "strings"

// NormalizeTags splits comma-separated tag input, trims whitespace and drops
// empty fragments. Input order is preserved: "a, b ,, c" -> [a b c].
func NormalizeTags(input string) []string {
	parts := strings.Split(input, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse presentation used when loading a record back into
// an edit buffer.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
