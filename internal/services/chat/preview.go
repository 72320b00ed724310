package chat

import (
	"html"
	"regexp"
	"strings"
)

const previewMaxLen = 100

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// MakePreview turns message content into the plain-text summary carried by
// home-room notifications: HTML stripped, entities decoded, truncated to
// 100 characters.
func MakePreview(content string) string {
	text := tagPattern.ReplaceAllString(content, "")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > previewMaxLen {
		return string(runes[:previewMaxLen])
	}
	return text
}
