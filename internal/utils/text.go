package utils

import (
	"strings"
	"unicode/utf8"
)

// HistoryTextLimit keeps song and artist values well inside the btree key
// size of the history unique index.
const HistoryTextLimit = 512

// CleanText strips NUL bytes and invalid UTF-8, trims surrounding space and
// cuts the result to at most maxRunes runes. A maxRunes of 0 means no limit.
func CleanText(input string, maxRunes int) string {
	cleaned := input
	if strings.Contains(cleaned, "\x00") || !utf8.ValidString(cleaned) {
		cleaned = strings.ToValidUTF8(cleaned, "")
		cleaned = strings.ReplaceAll(cleaned, "\x00", "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if maxRunes <= 0 || utf8.RuneCountInString(cleaned) <= maxRunes {
		return cleaned
	}

	runes := []rune(cleaned)
	return strings.TrimSpace(string(runes[:maxRunes]))
}
