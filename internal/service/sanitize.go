package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxMessageLength = 1000

var (
	scriptOpenRe   = regexp.MustCompile(`(?i)<script`)
	scriptCloseRe  = regexp.MustCompile(`(?i)</script>`)
	jsSchemeRe     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon(click|error|load|mouseover|focus)\s*=`)
)

// SanitizeContent neutralizes script tags and a few inline event handlers.
// It is a denylist, not an HTML sanitizer.
func SanitizeContent(s string) string {
	s = scriptOpenRe.ReplaceAllString(s, "&lt;script")
	s = scriptCloseRe.ReplaceAllString(s, "&lt;/script&gt;")
	s = jsSchemeRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	return s
}

// normalizeMessage trims, sanitizes and length-checks user input before and after escaping.
func normalizeMessage(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", errMessageTooLong
	}
	content = strings.TrimSpace(SanitizeContent(content))
	if content == "" {
		return "", errEmptyMessage
	}
	// Escaping can grow the text; the stored form must fit too.
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", errMessageTooLong
	}
	return content, nil
}
