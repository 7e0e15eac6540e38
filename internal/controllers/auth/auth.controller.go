package authController

import (
	"context"
	"time"

	"linkpage/internal/models"
	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const AuthErrorPath = "/auth/auth-error"

// Authenticator is the OAuth and session surface the controller drives.
type Authenticator interface {
	LoginScreen(source, next string) (services.LoginScreen, error)
	StartURL(ctx context.Context, provider models.AuthProvider, next string) (string, error)
	Complete(ctx context.Context, provider models.AuthProvider, state, code string) (*models.User, string, error)
	IssueSession(user *models.User) (string, time.Time, error)
}

// AuthController handles authentication business logic
type AuthController struct {
	auth Authenticator
	log  logger.Logger
}

// AuthControllerInterface defines the contract for auth business logic
type AuthControllerInterface interface {
	LoginScreen(source, next string) (*services.LoginScreen, error)
	StartLogin(ctx context.Context, provider, next string) (string, error)
	CompleteLogin(ctx context.Context, provider, state, code string) (*LoginResult, error)
	CurrentUser(user *models.User) (*models.UserProfile, error)
}

// LoginResult is a signed in user and the session that carries them.
type LoginResult struct {
	User      models.UserProfile
	Token     string
	ExpiresAt time.Time
	Next      string
}

func New(services services.Service) AuthControllerInterface {
	return &AuthController{
		auth: services.Auth,
		log:  logger.New("authController"),
	}
}

func (c *AuthController) LoginScreen(source, next string) (*services.LoginScreen, error) {
	screen, err := c.auth.LoginScreen(source, next)
	if err != nil {
		return nil, err
	}
	return &screen, nil
}

// StartLogin returns the provider consent URL for the login button.
func (c *AuthController) StartLogin(ctx context.Context, provider, next string) (string, error) {
	log := c.log.TraceFromContext(ctx).Function("StartLogin")

	name, err := parseProvider(provider)
	if err != nil {
		return "", log.Err("unknown login provider", err, "provider", provider)
	}

	return c.auth.StartURL(ctx, name, next)
}

// CompleteLogin finishes the provider callback and issues the session token.
func (c *AuthController) CompleteLogin(ctx context.Context, provider, state, code string) (*LoginResult, error) {
	log := c.log.TraceFromContext(ctx).Function("CompleteLogin")

	name, err := parseProvider(provider)
	if err != nil {
		return nil, log.Err("unknown login provider", err, "provider", provider)
	}

	user, next, err := c.auth.Complete(ctx, name, state, code)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := c.auth.IssueSession(user)
	if err != nil {
		return nil, log.Err("failed to issue session", err, "userID", user.ID)
	}

	return &LoginResult{
		User:      user.ToProfile(),
		Token:     token,
		ExpiresAt: expiresAt,
		Next:      next,
	}, nil
}

func (c *AuthController) CurrentUser(user *models.User) (*models.UserProfile, error) {
	if user == nil {
		return nil, types.ErrUnauthorized
	}
	profile := user.ToProfile()
	return &profile, nil
}

func parseProvider(provider string) (models.AuthProvider, error) {
	switch models.AuthProvider(provider) {
	case models.ProviderDiscord:
		return models.ProviderDiscord, nil
	case models.ProviderGithub:
		return models.ProviderGithub, nil
	}
	return "", types.ErrNotFound
}
