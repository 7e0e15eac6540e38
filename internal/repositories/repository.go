package repositories

import (
	"linkpage/internal/database"
)

type Repository struct {
	ProfileConfig ProfileConfigRepository
	Spotify       SpotifyRepository
	User          UserRepository
	Subscriber    SubscriberRepository
}

func New(db database.DB) Repository {
	return Repository{
		ProfileConfig: NewProfileConfigRepository(db),
		Spotify:       NewSpotifyRepository(db),
		User:          NewUserRepository(db),
		Subscriber:    NewSubscriberRepository(db),
	}
}
