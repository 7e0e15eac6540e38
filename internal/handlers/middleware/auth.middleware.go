package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"linkpage/internal/models"
	"linkpage/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	UserKey      AuthContextKey = "user"
	UserKeyFiber string         = "User" // Fiber context key (string)

	LoginPath     = "/auth/login"
	AuthErrorPath = "/auth/auth-error"
)

// RequireSession resolves the session cookie. API calls without a valid
// session get a 401, browser navigations are sent to the admin login.
func (m *Middleware) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.TraceFromContext(c.UserContext()).Function("RequireSession")

		user, err := m.sessions.UserFromSession(c.UserContext(), c.Cookies(services.SessionCookieName))
		if err != nil {
			log.Debug("session rejected", "path", c.Path(), "error", err)
			if wantsJSON(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication required",
				})
			}
			return c.Redirect(loginRedirect(c.OriginalURL()), fiber.StatusFound)
		}

		setUser(c, user)
		return c.Next()
	}
}

// OptionalSession attaches the user when a valid session cookie is present.
func (m *Middleware) OptionalSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(services.SessionCookieName)
		if token == "" {
			return c.Next()
		}

		if user, err := m.sessions.UserFromSession(c.UserContext(), token); err == nil {
			setUser(c, user)
		}
		return c.Next()
	}
}

// RequireAdminRole runs after RequireSession and applies the Discord guild
// role check.
func (m *Middleware) RequireAdminRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.TraceFromContext(c.UserContext()).Function("RequireAdminRole")

		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if err := m.admins.CheckAdmin(c.UserContext(), user); err != nil {
			code := services.ErrorCodeUnauthorizedRole
			if errors.Is(err, services.ErrDiscordRequired) {
				code = services.ErrorCodeDiscordRequired
			}
			log.Info("admin access denied", "userID", user.ID, "code", code)

			if wantsJSON(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": code})
			}
			return c.Redirect(AuthErrorPath+"?"+url.Values{"error": {code}}.Encode(), fiber.StatusFound)
		}

		return c.Next()
	}
}

// GetUser extracts user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func setUser(c *fiber.Ctx, user *models.User) {
	c.Locals(UserKeyFiber, user)
	// Keep the trace id set by TraceID.
	c.SetUserContext(context.WithValue(c.UserContext(), UserKey, user))
}

func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML) != fiber.MIMETextHTML
}

func loginRedirect(next string) string {
	return LoginPath + "?" + url.Values{
		"source": {services.LoginSourceAdmin},
		"next":   {next},
	}.Encode()
}
