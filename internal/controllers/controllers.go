package controllers

import (
	"linkpage/internal/events"
	"linkpage/internal/repositories"
	"linkpage/internal/services"

	adminController "linkpage/internal/controllers/admin"
	authController "linkpage/internal/controllers/auth"
	loggingController "linkpage/internal/controllers/logging"
	spotifyController "linkpage/internal/controllers/spotify"
	subscribeController "linkpage/internal/controllers/subscribe"
)

type Controllers struct {
	Admin     adminController.AdminControllerInterface
	Auth      authController.AuthControllerInterface
	Spotify   spotifyController.SpotifyControllerInterface
	Subscribe subscribeController.SubscribeControllerInterface
	Logging   loggingController.LoggingControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
) Controllers {
	return Controllers{
		Admin:     adminController.New(repos, services, eventBus),
		Auth:      authController.New(services),
		Spotify:   spotifyController.New(services),
		Subscribe: subscribeController.New(repos),
		Logging:   loggingController.New(services),
	}
}
