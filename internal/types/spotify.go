package types

import "time"

// NowPlaying is the track snapshot served to the public page. When nothing is
// playing it may carry the last played track with PlayedAt set.
type NowPlaying struct {
	IsPlaying     bool       `json:"isPlaying"`
	Title         string     `json:"title,omitempty"`
	Artist        string     `json:"artist,omitempty"`
	Album         string     `json:"album,omitempty"`
	AlbumImageURL string     `json:"albumImageUrl,omitempty"`
	SongURL       string     `json:"songUrl,omitempty"`
	ProgressMs    int64      `json:"progressMs,omitempty"`
	DurationMs    int64      `json:"durationMs,omitempty"`
	PlayedAt      *time.Time `json:"playedAt,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// HasTrack reports whether there is anything to show, live or historical.
func (n NowPlaying) HasTrack() bool {
	return n.Title != ""
}
