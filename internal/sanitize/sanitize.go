// Package sanitize normalizes untrusted strings from webhook payloads
// before they are persisted.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Elements removed together with their content.
	reDangerousBlocks = regexp.MustCompile(`(?is)<(script|style|iframe|object|embed|form)\b[^>]*>.*?</(script|style|iframe|object|embed|form)>`)

	// Dangling open tags of the same elements (unclosed markup).
	reDangerousTags = regexp.MustCompile(`(?i)</?(script|style|iframe|object|embed|form)\b[^>]*>`)

	reEventAttrs = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	reJSURLAttrs = regexp.MustCompile(`(?i)\s+(href|src)\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*')`)

	reAnyTag     = regexp.MustCompile(`(?s)<[^>]*>`)
	reAllowedTag = regexp.MustCompile(`(?i)^</?(p|br|div|span|ul|ol|li|strong|em|b|i|u|a|h[1-6]|blockquote)\b`)

	reWhitespace = regexp.MustCompile(`\s+`)
)

// Text strips all markup and normalizes the result to a single line of
// plain text. Used for every short string field.
func Text(s string) string {
	s = reDangerousBlocks.ReplaceAllString(s, "")
	s = reAnyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = stripControl(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// RichText keeps a small allowlist of formatting tags and removes
// everything executable: script/style blocks with their content, event
// handler attributes and javascript: URLs.
func RichText(s string) string {
	s = reDangerousBlocks.ReplaceAllString(s, "")
	s = reDangerousTags.ReplaceAllString(s, "")
	s = reEventAttrs.ReplaceAllString(s, "")
	s = reJSURLAttrs.ReplaceAllString(s, "")
	s = reAnyTag.ReplaceAllStringFunc(s, func(tag string) string {
		if reAllowedTag.MatchString(tag) {
			return tag
		}
		return ""
	})
	s = stripControl(s)
	return strings.TrimSpace(s)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
