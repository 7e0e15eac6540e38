package middleware

import (
	"context"

	"linkpage/config"
	"linkpage/internal/models"
	"linkpage/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type SessionResolver interface {
	UserFromSession(ctx context.Context, token string) (*models.User, error)
}

type AdminGate interface {
	CheckAdmin(ctx context.Context, user *models.User) error
}

type Middleware struct {
	sessions SessionResolver
	admins   AdminGate
	Config   config.Config
	log      logger.Logger
}

func New(services services.Service, config config.Config) Middleware {
	log := logger.New("middleware")

	return Middleware{
		sessions: services.Auth,
		admins:   services.Discord,
		Config:   config,
		log:      log,
	}
}
