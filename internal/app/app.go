package app

import (
	"context"

	"linkpage/config"
	"linkpage/internal/controllers"
	"linkpage/internal/database"
	"linkpage/internal/events"
	"linkpage/internal/handlers/middleware"
	"linkpage/internal/jobs"
	"linkpage/internal/live"
	"linkpage/internal/repositories"
	"linkpage/internal/services"
	"linkpage/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers

	// Profile is the live public page shared by every viewer of this process.
	Profile *live.Profile
}

func New(ctx context.Context) (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	repos := repositories.New(db)

	svc, err := services.New(ctx, db, config, repos)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket := websockets.New()
	profile := live.NewProfile(repos.ProfileConfig, websocket, live.NewRelayFactory(config))
	websocket.SetSnapshotSource(profile)

	if err := jobs.RegisterAllJobs(svc.Scheduler, config, svc, profile, eventBus); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware.New(svc, config),
		Websocket:    websocket,
		EventBus:     eventBus,
		Services:     svc,
		Repositories: repos,
		Controllers:  controllers.New(svc, repos, eventBus),
		Profile:      profile,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

// Start loads the live profile and begins background polling.
func (a *App) Start(ctx context.Context) error {
	log := logger.New("app").Function("Start")

	if err := a.Profile.Start(ctx, a.EventBus); err != nil {
		return log.Err("failed to start live profile", err)
	}

	if err := a.Services.Scheduler.Start(ctx); err != nil {
		return log.Err("failed to start scheduler", err)
	}

	return nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Profile,
		a.Services.Auth,
		a.Services.Discord,
		a.Services.Spotify,
		a.Services.Youtube,
		a.Services.Storage,
		a.Services.Scheduler,
		a.Controllers.Admin,
		a.Controllers.Auth,
		a.Repositories.ProfileConfig,
		a.Repositories.User,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Profile != nil {
		a.Profile.Stop()
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if closeErr := a.Services.Close(); closeErr != nil {
		err = closeErr
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
