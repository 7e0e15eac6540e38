package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ago      time.Duration
		expected string
	}{
		{"just now", 0, "0s ago"},
		{"seconds", 59 * time.Second, "59s ago"},
		{"one minute", time.Minute, "1m ago"},
		{"minutes", 59*time.Minute + 59*time.Second, "59m ago"},
		{"hours", 5 * time.Hour, "5h ago"},
		{"days", 29 * 24 * time.Hour, "29d ago"},
		{"one month", 30 * 24 * time.Hour, "1mo ago"},
		{"months", 359 * 24 * time.Hour, "11mo ago"},
		{"year", 360 * 24 * time.Hour, "1y ago"},
		{"future clamps", -time.Hour, "0s ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeAgo(now.Add(-tt.ago), now))
		})
	}
}

func TestFormatTimeAgo_ZeroTime(t *testing.T) {
	assert.Empty(t, FormatTimeAgo(time.Time{}, time.Now()))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{name: "clean input unchanged", input: "Fine", maxRunes: 0, expected: "Fine"},
		{name: "strips nul bytes", input: "Song\x00 Title", maxRunes: 0, expected: "Song Title"},
		{name: "drops invalid utf8", input: "Bad\xffByte", maxRunes: 0, expected: "BadByte"},
		{name: "trims space", input: "  Artist  ", maxRunes: 0, expected: "Artist"},
		{name: "truncates by rune", input: "héllo wörld", maxRunes: 5, expected: "héllo"},
		{name: "under limit", input: "short", maxRunes: 10, expected: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input, tt.maxRunes))
		})
	}
}
