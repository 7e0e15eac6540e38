package handlers

import (
	"linkpage/internal/app"
	loggingController "linkpage/internal/controllers/logging"
	"linkpage/internal/handlers/middleware"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type LoggingHandler struct {
	Handler
	controller loggingController.LoggingControllerInterface
}

func NewLoggingHandler(app app.App, router fiber.Router) *LoggingHandler {
	log := logger.New("handlers").File("logging_handler")
	return &LoggingHandler{
		controller: app.Controllers.Logging,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *LoggingHandler) Register() {
	h.router.Post("/logs", h.middleware.OptionalSession(), h.recordClientLogs)
}

// recordClientLogs takes diagnostics from profile viewers and signed in
// admins. Identity and user agent come from the request, not the body.
func (h *LoggingHandler) recordClientLogs(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("recordClientLogs")

	var batch types.ClientLogBatch
	if err := c.BodyParser(&batch); err != nil {
		log.Warn("Invalid client log batch", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	viewer := types.ClientViewer{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		TraceID:   middleware.GetTraceID(c),
	}
	if user := middleware.GetUser(c); user != nil {
		viewer.UserID = user.ID.String()
	}

	result, err := h.controller.Record(c.UserContext(), batch, viewer)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}
