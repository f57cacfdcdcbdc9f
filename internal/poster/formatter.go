package poster

import (
	"strings"
	"unicode/utf8"
)

const (
	// TwitterMaxLength is the maximum character count for a Twitter post.
	TwitterMaxLength = 280

	// MaxMediaPerTweet is how many attachments one status accepts.
	MaxMediaPerTweet = 4

	ellipsis = "..."
)

// FitsInLimit checks if the text fits within the limit.
func FitsInLimit(text string, limit int) bool {
	return utf8.RuneCountInString(text) <= limit
}

// Truncate shortens text to at most limit runes, ending in "...".
func Truncate(text string, limit int) string {
	if FitsInLimit(text, limit) {
		return text
	}
	if limit <= len(ellipsis) {
		return string([]rune(text)[:limit])
	}

	available := limit - len(ellipsis)
	truncated := string([]rune(text)[:available])

	// Find last space to avoid cutting mid-word
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > len(truncated)/2 { // Only use word boundary if not too far back
		truncated = truncated[:lastSpace]
	}

	return strings.TrimRight(truncated, " .,;:!?") + ellipsis
}
