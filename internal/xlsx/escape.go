package xlsx

import "strings"

// escapeText substitutes the five XML special characters with their entity
// forms. The ampersand must be replaced first: doing it later would mangle
// the ampersands introduced by the other substitutions.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
