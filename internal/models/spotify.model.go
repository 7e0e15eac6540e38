package models

import (
	"time"

	"github.com/google/uuid"
)

// SpotifyToken holds the single connected Spotify account.
type SpotifyToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuidv7()" json:"id"`
	AccessToken  string    `gorm:"type:text;not null"                    json:"-"`
	RefreshToken string    `gorm:"type:text;not null"                    json:"-"`
	ExpiresAt    time.Time `gorm:"not null"                              json:"expiresAt"`
	CreatedAt    time.Time `gorm:"autoCreateTime"                        json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"                        json:"updatedAt"`
}

// ExpiresWithin reports whether the access token is expired or will be within d.
func (t *SpotifyToken) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Before(t.ExpiresAt.Add(-d))
}

type SpotifyHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuidv7()"           json:"id"`
	SongName  string    `gorm:"type:text;not null;uniqueIndex:idx_song_artist"  json:"songName"`
	Artist    string    `gorm:"type:text;not null;uniqueIndex:idx_song_artist"  json:"artist"`
	CoverURL  string    `gorm:"type:text"                                       json:"coverUrl"`
	PlayedAt  time.Time `gorm:"not null;index:idx_spotify_history_played_at"    json:"playedAt"`
	CreatedAt time.Time `gorm:"autoCreateTime"                                  json:"createdAt"`
}

func (SpotifyHistory) TableName() string {
	return "spotify_history"
}
