package handlers

import (
	"net/url"
	"time"

	"linkpage/internal/app"
	authController "linkpage/internal/controllers/auth"
	"linkpage/internal/handlers/middleware"
	"linkpage/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	controller   authController.AuthControllerInterface
	secureCookie bool
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		controller:   app.Controllers.Auth,
		secureCookie: app.Config.Environment != "development",
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Get("/login", h.getLoginScreen)
	auth.Get("/:provider/start", h.startLogin)
	auth.Get("/:provider/callback", h.callback)
	auth.Post("/logout", h.logout)

	auth.Get("/me", h.middleware.RequireSession(), h.getCurrentUser)
}

// getLoginScreen describes which provider the login page offers for a source.
func (h *AuthHandler) getLoginScreen(c *fiber.Ctx) error {
	source := c.Query("source")
	if source == "" {
		return c.Redirect("/", fiber.StatusFound)
	}

	screen, err := h.controller.LoginScreen(source, c.Query("next"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(screen)
}

func (h *AuthHandler) startLogin(c *fiber.Ctx) error {
	authURL, err := h.controller.StartLogin(c.UserContext(), c.Params("provider"), c.Query("next"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Redirect(authURL, fiber.StatusFound)
}

func (h *AuthHandler) callback(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("callback")

	if providerErr := c.Query("error"); providerErr != "" {
		log.Info("provider declined login", "provider", c.Params("provider"), "error", providerErr)
		return c.Redirect(authErrorURL("access_denied"), fiber.StatusFound)
	}

	result, err := h.controller.CompleteLogin(
		c.UserContext(),
		c.Params("provider"),
		c.Query("state"),
		c.Query("code"),
	)
	if err != nil {
		log.Info("login failed", "provider", c.Params("provider"), "error", err)
		return c.Redirect(authErrorURL("login_failed"), fiber.StatusFound)
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.Redirect(result.Next, fiber.StatusFound)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

func (h *AuthHandler) getCurrentUser(c *fiber.Ctx) error {
	profile, err := h.controller.CurrentUser(middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"user": profile})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     services.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func authErrorURL(code string) string {
	return middleware.AuthErrorPath + "?" + url.Values{"error": {code}}.Encode()
}
