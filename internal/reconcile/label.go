package reconcile

import "strings"

// Labeled snapshot content carries a banner as its first line so exported
// blocks stay self-describing:
//
//	[[<label first line>]]
//	<blank>
//	<original content>
//
// Re-labeling strips the previous banner before applying the new one, so
// banners never stack.

// ApplyLabel prepends a label banner to content.
func ApplyLabel(content, label string) string {
	first := label
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return "[[" + strings.TrimSpace(first) + "]]\n\n" + content
}

// StripLabel removes a leading label banner from content, if present.
func StripLabel(content string) string {
	if !strings.HasPrefix(content, "[[") {
		return content
	}
	i := strings.IndexByte(content, '\n')
	if i < 0 || !strings.HasSuffix(content[:i], "]]") {
		return content
	}
	rest := content[i+1:]
	rest = strings.TrimPrefix(rest, "\n")
	return rest
}
