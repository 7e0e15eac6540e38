package services

import (
	"context"

	"linkpage/config"
	"linkpage/internal/database"
	"linkpage/internal/repositories"
)

type Service struct {
	Auth       *AuthService
	Discord    *DiscordService
	Spotify    *SpotifyService
	Youtube    *YoutubeService
	Geocoding  *GeocodingService
	Storage    ObjectStore
	ClientLogs *ClientLogService
	Scheduler  *SchedulerService
}

func New(
	ctx context.Context,
	db database.DB,
	config config.Config,
	repos repositories.Repository,
) (Service, error) {
	discordService, err := NewDiscordService(config, NewCacheRoleCache(db.Cache.General))
	if err != nil {
		return Service{}, err
	}

	youtubeService, err := NewYoutubeService(ctx, config)
	if err != nil {
		return Service{}, err
	}

	storage, err := NewObjectStore(ctx, config)
	if err != nil {
		return Service{}, err
	}

	return Service{
		Auth:       NewAuthService(config, repos.User, NewCacheStateStore(db.Cache.Session)),
		Discord:    discordService,
		Spotify:    NewSpotifyService(config, repos.Spotify, db.Cache.General),
		Youtube:    youtubeService,
		Geocoding:  NewGeocodingService(),
		Storage:    storage,
		ClientLogs: NewClientLogService(config),
		Scheduler:  NewSchedulerService(),
	}, nil
}

// Close releases clients that hold connections.
func (s Service) Close() error {
	if s.Storage == nil {
		return nil
	}
	return s.Storage.Close()
}
