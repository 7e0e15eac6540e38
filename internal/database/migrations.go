package database

import (
	"linkpage/internal/models"
)

// ModelsToMigrate lists every gorm model owned by the service.
var ModelsToMigrate = []any{
	&models.ProfileConfig{},
	&models.SpotifyToken{},
	&models.SpotifyHistory{},
	&models.User{},
	&models.Subscriber{},
}
