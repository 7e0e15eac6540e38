package handlers

import (
	"encoding/json"

	"linkpage/internal/app"
	adminController "linkpage/internal/controllers/admin"
	"linkpage/internal/editor"
	"linkpage/internal/handlers/middleware"
	"linkpage/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	controller adminController.AdminControllerInterface
}

// editorRequest carries the draft being edited plus the operation arguments.
type editorRequest struct {
	Config models.ProfileDocument `json:"config"`
	editor.Operation
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	log := logger.New("handlers").File("admin_handler")
	return &AdminHandler{
		controller: app.Controllers.Admin,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireSession(), h.middleware.RequireAdminRole())
	h.routes(admin)
}

func (h *AdminHandler) routes(admin fiber.Router) {
	admin.Get("/config", h.getConfig)
	admin.Put("/config", h.saveConfig)
	admin.Post("/editor/:op", h.applyOperation)
	admin.Post("/uploads", h.upload)
	admin.Get("/youtube/search", h.searchYoutube)
	admin.Get("/geocode", h.geocode)
	admin.Delete("/spotify", h.disconnectSpotify)
}

func (h *AdminHandler) getConfig(c *fiber.Ctx) error {
	response, err := h.controller.GetConfig(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(response)
}

func (h *AdminHandler) saveConfig(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("saveConfig")

	var doc models.ProfileDocument
	if err := c.BodyParser(&doc); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	response, err := h.controller.SaveConfig(c.UserContext(), doc)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(response)
}

func (h *AdminHandler) applyOperation(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("applyOperation")

	var req editorRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Op = editor.OpName(c.Params("op"))

	doc, err := h.controller.ApplyOperation(c.UserContext(), req.Config, req.Operation)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"config": doc})
}

func (h *AdminHandler) upload(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("upload")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	req := adminController.UploadRequest{
		Target:      c.FormValue("target"),
		GalleryType: models.MediaType(c.FormValue("galleryType")),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
	}

	if draft := c.FormValue("config"); draft != "" {
		var doc models.ProfileDocument
		if err := json.Unmarshal([]byte(draft), &doc); err != nil {
			log.Warn("Invalid config draft", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid config draft"})
		}
		req.Draft = &doc
	}

	// Oversized files are refused before the body is opened.
	if fileHeader.Size <= editor.MaxUploadBytes {
		file, err := fileHeader.Open()
		if err != nil {
			return log.Err("failed to open upload", err)
		}
		defer file.Close()
		req.Body = file
	}

	response, err := h.controller.Upload(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(response)
}

func (h *AdminHandler) searchYoutube(c *fiber.Ctx) error {
	results, err := h.controller.SearchYoutube(c.UserContext(), c.Query("q"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

func (h *AdminHandler) geocode(c *fiber.Ctx) error {
	place, err := h.controller.Geocode(c.UserContext(), c.Query("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(place)
}

func (h *AdminHandler) disconnectSpotify(c *fiber.Ctx) error {
	if err := h.controller.DisconnectSpotify(c.UserContext()); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Spotify disconnected"})
}
