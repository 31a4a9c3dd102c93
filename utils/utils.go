package utils

import (
	"fmt"
	"regexp"
	"strings"
)

func UrlQuery(s string) string { return strings.ReplaceAll(s, " ", "+") }

func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// MarkdownBoldToHTML converts **bold** spans to <strong> tags. The web
// clients render answers as HTML, so this runs on every outgoing answer.
func MarkdownBoldToHTML(s string) string {
	return boldRe.ReplaceAllString(s, "<strong>$1</strong>")
}

// StandardizeQuery trims and lowercases a user query for history keys
// and logging
func StandardizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
