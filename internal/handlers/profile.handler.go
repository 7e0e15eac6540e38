package handlers

import (
	"linkpage/internal/app"
	"linkpage/internal/live"
	"linkpage/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ProfileView interface {
	View() live.View
}

type ProfileHandler struct {
	Handler
	profile   ProfileView
	websocket *websockets.Manager
}

func NewProfileHandler(app app.App, router fiber.Router) *ProfileHandler {
	log := logger.New("handlers").File("profile_handler")
	return &ProfileHandler{
		profile:   app.Profile,
		websocket: app.Websocket,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ProfileHandler) Register() {
	h.router.Get("/profile", h.getProfile)
}

// RegisterWebSocket mounts the viewer stream at the router root.
func (h *ProfileHandler) RegisterWebSocket(root fiber.Router) {
	root.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	root.Get("/ws", websocket.New(func(c *websocket.Conn) {
		h.websocket.HandleWebSocket(c)
	}))
}

func (h *ProfileHandler) getProfile(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(h.profile.View())
}
