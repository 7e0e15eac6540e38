package editor

import (
	"testing"
	"time"

	"linkpage/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	taken := map[string]bool{"1714564800000": true, "1714564800001": true}
	id := NewID(fixedNow, func(id string) bool { return taken[id] })
	assert.Equal(t, "1714564800002", id)
}

func TestSetProfile_KeepsPresenceAndStatus(t *testing.T) {
	doc := sampleDocument()
	doc.Profile.Presence = models.Presence{Mode: models.PresenceManual, DiscordID: "42"}
	doc.Profile.Status = models.ManualStatus{Text: "Busy", Color: models.ColorRed}

	updated := SetProfile(doc, models.Profile{Handle: "@me", Bio: "hello"})

	assert.Equal(t, "@me", updated.Profile.Handle)
	assert.Equal(t, doc.Profile.Presence, updated.Profile.Presence)
	assert.Equal(t, doc.Profile.Status, updated.Profile.Status)
}

func TestSetPresence_DefaultsMode(t *testing.T) {
	updated := SetPresence(sampleDocument(), models.Presence{DiscordID: "42"})
	assert.Equal(t, models.PresenceAuto, updated.Profile.Presence.Mode)
	assert.Equal(t, "42", updated.Profile.Presence.DiscordID)
}

func TestNote(t *testing.T) {
	doc := sampleDocument()
	doc.Widgets.Note.Text = "back soon"

	touched := TouchNote(doc, time.Date(2024, 5, 1, 14, 30, 0, 0, time.FixedZone("X", 2*3600)))
	assert.Equal(t, "2024-05-01T12:30:00Z", touched.Widgets.Note.CreatedAt)
	assert.Equal(t, "back soon", touched.Widgets.Note.Text)

	cleared := ClearNote(touched)
	assert.Equal(t, models.Note{}, cleared.Widgets.Note)
	assert.Equal(t, "back soon", doc.Widgets.Note.Text)
}

func TestPrefillDiscordID(t *testing.T) {
	tests := []struct {
		name      string
		existing  string
		discordID string
		expected  string
	}{
		{"fills empty", "", "123", "123"},
		{"keeps existing", "999", "123", "999"},
		{"ignores empty identity", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			doc.Profile.Presence.DiscordID = tt.existing
			assert.Equal(t, tt.expected, PrefillDiscordID(doc, tt.discordID).Profile.Presence.DiscordID)
		})
	}
}

func TestSelectVideo(t *testing.T) {
	doc := sampleDocument()
	doc.Music.CoverURL = "/uploads/cover.png"

	updated := SelectVideo(doc, VideoPick{VideoID: "dQw4w9WgXcQ", Title: "Song", ChannelTitle: "Band"})
	assert.Equal(t, "dQw4w9WgXcQ", updated.Music.YoutubeVideoID)
	assert.Equal(t, "Song", updated.Music.Title)
	assert.Equal(t, "Band", updated.Music.Artist)
	assert.Equal(t, "/uploads/cover.png", updated.Music.CoverURL)

	withThumb := SelectVideo(doc, VideoPick{VideoID: "x", Thumbnail: "https://i.ytimg.com/x.jpg"})
	assert.Equal(t, "https://i.ytimg.com/x.jpg", withThumb.Music.CoverURL)
}
