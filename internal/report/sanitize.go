package report

import (
	"html"
	"strings"
)

// SanitizeText flattens rich markup into plain text: tags are removed,
// entities decoded, and whitespace runs collapsed to single spaces. The
// output format is not markup-aware, so nothing else survives.
func SanitizeText(input string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range input {
		switch {
		case r == '<':
			inTag = true
			// Tag boundaries act as separators so "a<br>b" does not
			// collapse into "ab".
			sb.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	decoded := html.UnescapeString(sb.String())
	return strings.Join(strings.Fields(decoded), " ")
}
