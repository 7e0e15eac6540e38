package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// MainConfigKey identifies the single profile document row.
const MainConfigKey = "main_config"

type PresenceMode string

const (
	PresenceAuto   PresenceMode = "auto"
	PresenceManual PresenceMode = "manual"
)

type StatusColor string

const (
	ColorGreen  StatusColor = "green"
	ColorYellow StatusColor = "yellow"
	ColorRed    StatusColor = "red"
	ColorBlue   StatusColor = "blue"
	ColorPurple StatusColor = "purple"
	ColorGray   StatusColor = "gray"
)

type ResourceType string

const (
	ResourceGallery ResourceType = "gallery"
	ResourceDoc     ResourceType = "doc"
	ResourcePost    ResourceType = "post"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

var ErrInvalidDocument = errors.New("invalid profile document")

// ProfileConfig stores the whole public page as one versioned JSON document.
type ProfileConfig struct {
	Key       string                              `gorm:"type:text;primaryKey"  json:"key"`
	Version   int64                               `gorm:"not null;default:0"     json:"version"`
	Data      datatypes.JSONType[ProfileDocument] `gorm:"type:jsonb;not null"    json:"data"`
	CreatedAt time.Time                           `gorm:"autoCreateTime"         json:"createdAt"`
	UpdatedAt time.Time                           `gorm:"autoUpdateTime"         json:"updatedAt"`
}

type ProfileDocument struct {
	Profile   Profile       `json:"profile"`
	Links     []Link        `json:"links"     validate:"dive"`
	Resources []Resource    `json:"resources" validate:"dive"`
	Gallery   []GalleryItem `json:"gallery"   validate:"dive"`
	Music     Music         `json:"music"`
	Widgets   Widgets       `json:"widgets"`
}

type Profile struct {
	Handle         string       `json:"handle"`
	Bio            string       `json:"bio"`
	AvatarURL      string       `json:"avatarUrl"`
	LogoURL        string       `json:"logoUrl"`
	BannerURL      string       `json:"bannerUrl"`
	ThemeColor     string       `json:"themeColor"`
	Location       string       `json:"location"`
	WeatherEnabled bool         `json:"weatherEnabled"`
	Presence       Presence     `json:"presence"`
	Status         ManualStatus `json:"status"`
}

type Presence struct {
	Mode      PresenceMode `json:"mode"      validate:"omitempty,oneof=auto manual"`
	DiscordID string       `json:"discordId" validate:"omitempty,numeric"`
}

// ManualStatus is the operator-entered status used while presence is manual.
type ManualStatus struct {
	Text  string      `json:"text"  validate:"max=128"`
	Color StatusColor `json:"color" validate:"omitempty,oneof=green yellow red blue purple gray"`
}

type Link struct {
	ID   string `json:"id"   validate:"required"`
	Name string `json:"name" validate:"max=256"`
	URL  string `json:"url"`
	Icon Icon   `json:"icon"`
}

type Resource struct {
	ID         string       `json:"id"                   validate:"required"`
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	Type       ResourceType `json:"type"                 validate:"oneof=gallery doc post"`
	PreviewURL string       `json:"previewUrl,omitempty"`
	Meta       string       `json:"meta,omitempty"`
}

type GalleryItem struct {
	ID      string    `json:"id"      validate:"required"`
	Type    MediaType `json:"type"    validate:"oneof=image video"`
	URL     string    `json:"url"`
	Caption string    `json:"caption"`
}

type Music struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	CoverURL       string `json:"coverUrl"`
	AudioURL       string `json:"audioUrl"`
	YoutubeVideoID string `json:"youtubeVideoId"`
	SpotifyEnabled bool   `json:"spotifyEnabled"`
}

type Widgets struct {
	QuotesEnabled bool `json:"quotesEnabled"`
	NotesEnabled  bool `json:"notesEnabled"`
	Note          Note `json:"note"`
}

type Note struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultDocument is served until the first save creates the row.
func DefaultDocument() ProfileDocument {
	return ProfileDocument{
		Profile: Profile{
			Presence: Presence{Mode: PresenceAuto},
			Status:   ManualStatus{Text: "Offline", Color: ColorGray},
		},
		Links:     []Link{},
		Resources: []Resource{},
		Gallery:   []GalleryItem{},
	}
}

// Normalize replaces nil lists with empty ones so saved JSON is stable.
func (d ProfileDocument) Normalize() ProfileDocument {
	if d.Links == nil {
		d.Links = []Link{}
	}
	if d.Resources == nil {
		d.Resources = []Resource{}
	}
	if d.Gallery == nil {
		d.Gallery = []GalleryItem{}
	}
	if d.Profile.Presence.Mode == "" {
		d.Profile.Presence.Mode = PresenceAuto
	}
	return d
}

func (d ProfileDocument) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if id, ok := firstDuplicate(d.Links, func(l Link) string { return l.ID }); ok {
		return fmt.Errorf("%w: duplicate link id %q", ErrInvalidDocument, id)
	}
	if id, ok := firstDuplicate(d.Resources, func(r Resource) string { return r.ID }); ok {
		return fmt.Errorf("%w: duplicate resource id %q", ErrInvalidDocument, id)
	}
	if id, ok := firstDuplicate(d.Gallery, func(g GalleryItem) string { return g.ID }); ok {
		return fmt.Errorf("%w: duplicate gallery id %q", ErrInvalidDocument, id)
	}

	return nil
}

func firstDuplicate[T any](items []T, id func(T) string) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			return key, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}

func (c *ProfileConfig) Document() ProfileDocument {
	return c.Data.Data()
}
