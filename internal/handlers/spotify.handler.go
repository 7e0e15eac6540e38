package handlers

import (
	"linkpage/internal/app"
	spotifyController "linkpage/internal/controllers/spotify"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type SpotifyHandler struct {
	Handler
	controller spotifyController.SpotifyControllerInterface
}

func NewSpotifyHandler(app app.App, router fiber.Router) *SpotifyHandler {
	log := logger.New("handlers").File("spotify_handler")
	return &SpotifyHandler{
		controller: app.Controllers.Spotify,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SpotifyHandler) Register() {
	spotify := h.router.Group("/spotify")

	spotify.Get("/now-playing", h.getNowPlaying)

	// Connecting an account is an admin action.
	spotify.Get("/auth", h.middleware.RequireSession(), h.middleware.RequireAdminRole(), h.authorize)
	spotify.Get("/callback", h.middleware.RequireSession(), h.middleware.RequireAdminRole(), h.callback)
}

func (h *SpotifyHandler) getNowPlaying(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(h.controller.NowPlaying(c.UserContext()))
}

func (h *SpotifyHandler) authorize(c *fiber.Ctx) error {
	authURL, err := h.controller.AuthURL()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *SpotifyHandler) callback(c *fiber.Ctx) error {
	return c.Redirect(h.controller.Callback(c.UserContext(), c.Query("code")), fiber.StatusFound)
}
