package utils

import (
	"fmt"
	"time"
)

// FormatTimeAgo renders the compact relative time shown under the last
// played track, e.g. "42s ago", "3h ago", "2mo ago".
func FormatTimeAgo(then, now time.Time) string {
	if then.IsZero() {
		return ""
	}

	seconds := int64(now.Sub(then) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds ago", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}

	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%dmo ago", months)
	}

	return fmt.Sprintf("%dy ago", months/12)
}
