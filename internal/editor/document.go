// Package editor holds the pure edits the admin dashboard applies to a draft
// profile document. Every function returns a new document and never mutates
// the slices of its input.
package editor

import (
	"strconv"
	"time"

	"linkpage/internal/models"
)

const (
	NewLinkName      = "New Link"
	NewLinkURL       = "https://"
	NewResourceTitle = "New Resource"
	NewResourceURL   = "/"
	NewUploadCaption = "New Upload"
)

// Clone copies every list so edits on the result never reach the original.
func Clone(doc models.ProfileDocument) models.ProfileDocument {
	doc.Links = append([]models.Link(nil), doc.Links...)
	doc.Resources = append([]models.Resource(nil), doc.Resources...)
	doc.Gallery = append([]models.GalleryItem(nil), doc.Gallery...)
	return doc.Normalize()
}

// NewID returns a millisecond timestamp id not already present in existing.
func NewID(now time.Time, existing func(id string) bool) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if !existing(id) {
			return id
		}
		ms++
	}
}

func SetProfile(doc models.ProfileDocument, profile models.Profile) models.ProfileDocument {
	doc = Clone(doc)
	profile.Presence = doc.Profile.Presence
	profile.Status = doc.Profile.Status
	doc.Profile = profile
	return doc
}

func SetPresence(doc models.ProfileDocument, presence models.Presence) models.ProfileDocument {
	doc = Clone(doc)
	if presence.Mode == "" {
		presence.Mode = models.PresenceAuto
	}
	doc.Profile.Presence = presence
	return doc
}

func SetStatus(doc models.ProfileDocument, status models.ManualStatus) models.ProfileDocument {
	doc = Clone(doc)
	doc.Profile.Status = status
	return doc
}

func SetMusic(doc models.ProfileDocument, music models.Music) models.ProfileDocument {
	doc = Clone(doc)
	doc.Music = music
	return doc
}

func SetWidgets(doc models.ProfileDocument, widgets models.Widgets) models.ProfileDocument {
	doc = Clone(doc)
	doc.Widgets = widgets
	return doc
}

// TouchNote stamps the note with the current time.
func TouchNote(doc models.ProfileDocument, now time.Time) models.ProfileDocument {
	doc = Clone(doc)
	doc.Widgets.Note.CreatedAt = now.UTC().Format(time.RFC3339)
	return doc
}

func ClearNote(doc models.ProfileDocument) models.ProfileDocument {
	doc = Clone(doc)
	doc.Widgets.Note = models.Note{}
	return doc
}

// PrefillDiscordID fills the presence target from the signed in identity
// when none is set yet. Presence mode falls back to auto.
func PrefillDiscordID(doc models.ProfileDocument, discordID string) models.ProfileDocument {
	if discordID == "" || doc.Profile.Presence.DiscordID != "" {
		return doc
	}
	doc = Clone(doc)
	doc.Profile.Presence.DiscordID = discordID
	if doc.Profile.Presence.Mode == "" {
		doc.Profile.Presence.Mode = models.PresenceAuto
	}
	return doc
}

// VideoPick is a YouTube search result chosen for the music widget.
type VideoPick struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Thumbnail    string `json:"thumbnail"`
}

func SelectVideo(doc models.ProfileDocument, pick VideoPick) models.ProfileDocument {
	doc = Clone(doc)
	doc.Music.YoutubeVideoID = pick.VideoID
	doc.Music.Title = pick.Title
	doc.Music.Artist = pick.ChannelTitle
	if pick.Thumbnail != "" {
		doc.Music.CoverURL = pick.Thumbnail
	}
	return doc
}
