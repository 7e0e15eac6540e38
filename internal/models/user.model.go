package models

import (
	"time"
)

type AuthProvider string

const (
	ProviderDiscord AuthProvider = "discord"
	ProviderGithub  AuthProvider = "github"
)

// User is an identity that has signed in through one of the OAuth providers.
type User struct {
	BaseUUIDModel
	Provider       AuthProvider `gorm:"type:text;not null;uniqueIndex:idx_provider_user" json:"provider"`
	ProviderUserID string       `gorm:"type:text;not null;uniqueIndex:idx_provider_user" json:"providerUserId"`
	DisplayName    string       `gorm:"type:text"                                        json:"displayName"`
	Email          *string      `gorm:"type:text"                                        json:"email,omitempty"`
	AvatarURL      string       `gorm:"type:text"                                        json:"avatarUrl"`
	LastLoginAt    *time.Time   `gorm:"type:timestamp"                                   json:"lastLoginAt,omitempty"`
}

// Identity is what a provider reports about the signed in account.
type Identity struct {
	Provider       AuthProvider
	ProviderUserID string
	DisplayName    string
	Email          string
	AvatarURL      string
}

type UserProfile struct {
	ID          string       `json:"id"`
	Provider    AuthProvider `json:"provider"`
	DisplayName string       `json:"displayName"`
	AvatarURL   string       `json:"avatarUrl"`
	DiscordID   string       `json:"discordId,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	profile := UserProfile{
		ID:          u.ID.String(),
		Provider:    u.Provider,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
	if u.IsDiscord() {
		profile.DiscordID = u.ProviderUserID
	}
	return profile
}

func (u *User) IsDiscord() bool {
	return u.Provider == ProviderDiscord
}

// UpdateFromIdentity copies provider claims onto the user and stamps the login.
func (u *User) UpdateFromIdentity(identity Identity) {
	now := time.Now()
	u.LastLoginAt = &now
	u.Provider = identity.Provider
	u.ProviderUserID = identity.ProviderUserID

	if identity.DisplayName != "" {
		u.DisplayName = identity.DisplayName
	}

	if identity.Email != "" {
		email := identity.Email
		u.Email = &email
	}

	if identity.AvatarURL != "" {
		u.AvatarURL = identity.AvatarURL
	}
}
