package handlers

import (
	"linkpage/internal/app"
	"linkpage/internal/handlers/middleware"
	"linkpage/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())

	router.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Files stored on local disk are served by this process; bucket URLs
	// point straight at the bucket.
	if local, ok := app.Services.Storage.(*services.LocalStore); ok {
		router.Static(services.LocalUploadsPath, local.Dir(), fiber.Static{
			MaxAge: 3600,
		})
	}

	NewAuthHandler(*app, router).Register()

	api := router.Group("/api")
	HealthHandler(api, app.Config)

	profile := NewProfileHandler(*app, api)
	profile.Register()
	profile.RegisterWebSocket(router)

	NewSpotifyHandler(*app, api).Register()
	NewSubscribeHandler(*app, api).Register()
	NewLoggingHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}
