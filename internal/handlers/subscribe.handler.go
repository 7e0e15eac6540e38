package handlers

import (
	"linkpage/internal/app"
	subscribeController "linkpage/internal/controllers/subscribe"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type SubscribeHandler struct {
	Handler
	controller subscribeController.SubscribeControllerInterface
}

func NewSubscribeHandler(app app.App, router fiber.Router) *SubscribeHandler {
	log := logger.New("handlers").File("subscribe_handler")
	return &SubscribeHandler{
		controller: app.Controllers.Subscribe,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SubscribeHandler) Register() {
	h.router.Post("/subscribe", h.subscribe)
}

func (h *SubscribeHandler) subscribe(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("subscribe")

	var req subscribeController.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	response, err := h.controller.Subscribe(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}
