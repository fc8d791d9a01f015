package services

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 4

// SanitizeMessageContent strips all markup from user-supplied message text and
// trims it to MaxMessageLength runes. Plain characters such as apostrophes and
// ampersands are kept as typed. Entity-encoded markup is decoded and stripped
// too, so the result never contains a tag.
func SanitizeMessageContent(content string) string {
	clean := content
	for i := 0; ; i++ {
		escaped := strictPolicy.Sanitize(clean)
		next := html.UnescapeString(escaped)
		if next == clean {
			break
		}
		if i == maxSanitizePasses {
			// Still decoding into markup: keep the escaped form.
			clean = escaped
			break
		}
		clean = next
	}
	clean = strings.TrimSpace(clean)
	if utf8.RuneCountInString(clean) > MaxMessageLength {
		runes := []rune(clean)
		clean = strings.TrimSpace(string(runes[:MaxMessageLength]))
	}
	return clean
}

// Preview shortens text to maxRunes runes on a word boundary, adding an ellipsis.
func Preview(text string, maxRunes int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
