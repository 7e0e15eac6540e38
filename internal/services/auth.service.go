package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"linkpage/config"
	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/repositories"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	OAUTH_STATE_PREFIX = "oauth_state"
	OAUTH_STATE_TTL    = 10 * time.Minute

	SessionCookieName = "linkpage_session"
	SessionIssuer     = "linkpage"

	LoginSourceAdmin     = "admin"
	LoginSourceGuestbook = "guestbook"

	DiscordAuthURL  = "https://discord.com/oauth2/authorize"
	DiscordTokenURL = "https://discord.com/api/oauth2/token"
	DiscordUserURL  = "https://discord.com/api/users/@me"
	DiscordCDNURL   = "https://cdn.discordapp.com"

	GithubUserURL   = "https://api.github.com/user"
	GithubEmailsURL = "https://api.github.com/user/emails"
)

// StateStore keeps pending OAuth states until the provider calls back.
type StateStore interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Take(ctx context.Context, key string, result any) (bool, error)
}

type cacheStateStore struct {
	cache database.CacheClient
}

func NewCacheStateStore(cache database.CacheClient) StateStore {
	return &cacheStateStore{cache: cache}
}

func (s *cacheStateStore) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.cache == nil {
		return types.ErrNotConfigured
	}

	return database.NewCacheBuilder(s.cache, key).
		WithHash(OAUTH_STATE_PREFIX).
		WithContext(ctx).
		WithStruct(value).
		WithTTL(ttl).
		Set()
}

func (s *cacheStateStore) Take(ctx context.Context, key string, result any) (bool, error) {
	if s.cache == nil {
		return false, types.ErrNotConfigured
	}

	return database.NewCacheBuilder(s.cache, key).
		WithHash(OAUTH_STATE_PREFIX).
		WithContext(ctx).
		Take(result)
}

type LoginProvider struct {
	ID       models.AuthProvider `json:"id"`
	Label    string              `json:"label"`
	StartURL string              `json:"startUrl"`
}

// LoginScreen describes what the login page shows for a given source.
type LoginScreen struct {
	Source    string          `json:"source"`
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle"`
	Next      string          `json:"next"`
	Providers []LoginProvider `json:"providers"`
}

type SessionClaims struct {
	jwt.RegisteredClaims
	Provider models.AuthProvider `json:"provider"`
}

type oauthState struct {
	Provider models.AuthProvider `json:"provider"`
	Next     string              `json:"next"`
}

type oauthProvider struct {
	config    *oauth2.Config
	userURL   string
	emailsURL string
}

type AuthService struct {
	providers  map[models.AuthProvider]*oauthProvider
	states     StateStore
	users      repositories.UserRepository
	secret     []byte
	sessionTTL time.Duration
	httpClient *http.Client
	now        func() time.Time
	log        logger.Logger
}

func NewAuthService(
	cfg config.Config,
	users repositories.UserRepository,
	states StateStore,
) *AuthService {
	log := logger.New("authService")
	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")

	providers := make(map[models.AuthProvider]*oauthProvider)
	if cfg.DiscordClientID != "" {
		providers[models.ProviderDiscord] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.DiscordClientID,
				ClientSecret: cfg.DiscordClientSecret,
				RedirectURL:  baseURL + "/auth/discord/callback",
				Scopes:       []string{"identify", "email"},
				Endpoint: oauth2.Endpoint{
					AuthURL:   DiscordAuthURL,
					TokenURL:  DiscordTokenURL,
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			userURL: DiscordUserURL,
		}
	} else {
		log.Warn("Discord client not configured, admin login disabled")
	}

	if cfg.GithubClientID != "" {
		providers[models.ProviderGithub] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GithubClientID,
				ClientSecret: cfg.GithubClientSecret,
				RedirectURL:  baseURL + "/auth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     github.Endpoint,
			},
			userURL:   GithubUserURL,
			emailsURL: GithubEmailsURL,
		}
	}

	return &AuthService{
		providers:  providers,
		states:     states,
		users:      users,
		secret:     []byte(cfg.SessionSecret),
		sessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
		log: log,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// LoginScreen maps a login source to its provider. Admins sign in with
// Discord so the guild role can be checked, guestbook visitors with GitHub.
func (s *AuthService) LoginScreen(source, next string) (LoginScreen, error) {
	var screen LoginScreen
	switch source {
	case LoginSourceAdmin:
		screen = LoginScreen{
			Title:     "SYSTEM_ADMIN_GATEWAY",
			Subtitle:  "PRIORITY_ACCESS_ONLY",
			Next:      SafeNext(next, "/me/admin"),
			Providers: []LoginProvider{{ID: models.ProviderDiscord, Label: "Discord"}},
		}
	case LoginSourceGuestbook:
		screen = LoginScreen{
			Title:     "GUESTBOOK_ACCESS",
			Subtitle:  "AUTHENTICATION_REQUIRED",
			Next:      SafeNext(next, "/guestbook"),
			Providers: []LoginProvider{{ID: models.ProviderGithub, Label: "GitHub"}},
		}
	default:
		return LoginScreen{}, fmt.Errorf("%w: unknown login source %q", types.ErrValidation, source)
	}

	screen.Source = source
	for i := range screen.Providers {
		screen.Providers[i].StartURL = fmt.Sprintf(
			"/auth/%s/start?next=%s",
			screen.Providers[i].ID,
			url.QueryEscape(screen.Next),
		)
	}

	return screen, nil
}

// SafeNext keeps redirects on this origin. Anything other than an absolute
// path falls back.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func (s *AuthService) provider(name models.AuthProvider) (*oauthProvider, error) {
	provider, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: login provider %s", types.ErrNotConfigured, name)
	}
	return provider, nil
}

// StartURL records a one-time state and returns the provider consent URL.
func (s *AuthService) StartURL(ctx context.Context, name models.AuthProvider, next string) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("StartURL")

	provider, err := s.provider(name)
	if err != nil {
		return "", err
	}

	state := uuid.NewString()
	if err := s.states.Save(ctx, state, oauthState{
		Provider: name,
		Next:     SafeNext(next, "/"),
	}, OAUTH_STATE_TTL); err != nil {
		return "", log.Err("failed to store oauth state", err, "provider", name)
	}

	return provider.config.AuthCodeURL(state), nil
}

// Complete verifies the state, exchanges the code and upserts the user. The
// returned path is where the browser goes next.
func (s *AuthService) Complete(
	ctx context.Context,
	name models.AuthProvider,
	state, code string,
) (*models.User, string, error) {
	log := s.log.TraceFromContext(ctx).Function("Complete")

	provider, err := s.provider(name)
	if err != nil {
		return nil, "", err
	}

	if state == "" || code == "" {
		return nil, "", log.ErrorWithType(types.ErrUnauthorized, "missing state or code")
	}

	var pending oauthState
	found, err := s.states.Take(ctx, state, &pending)
	if err != nil {
		return nil, "", log.Err("failed to load oauth state", err)
	}
	if !found || pending.Provider != name {
		return nil, "", log.ErrorWithType(types.ErrUnauthorized, "unknown oauth state", "provider", name)
	}

	clientCtx := context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := provider.config.Exchange(clientCtx, code)
	if err != nil {
		log.Er("failed to exchange oauth code", err, "provider", name)
		return nil, "", fmt.Errorf("%w: code exchange failed", types.ErrUnauthorized)
	}

	client := provider.config.Client(clientCtx, token)
	var identity models.Identity
	switch name {
	case models.ProviderDiscord:
		identity, err = s.discordIdentity(ctx, client, provider)
	case models.ProviderGithub:
		identity, err = s.githubIdentity(ctx, client, provider)
	}
	if err != nil {
		return nil, "", log.Err("failed to fetch identity", err, "provider", name)
	}

	user, err := s.users.FindOrCreate(ctx, identity)
	if err != nil {
		return nil, "", log.Err("failed to store user", err, "provider", name)
	}

	log.Info("User signed in", "provider", name, "userID", user.ID)
	return user, pending.Next, nil
}

func (s *AuthService) discordIdentity(
	ctx context.Context,
	client *http.Client,
	provider *oauthProvider,
) (models.Identity, error) {
	var account struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		GlobalName string `json:"global_name"`
		Email      string `json:"email"`
		Avatar     string `json:"avatar"`
	}
	if err := getJSON(ctx, client, provider.userURL, &account); err != nil {
		return models.Identity{}, err
	}
	if account.ID == "" {
		return models.Identity{}, fmt.Errorf("discord account has no id")
	}

	identity := models.Identity{
		Provider:       models.ProviderDiscord,
		ProviderUserID: account.ID,
		DisplayName:    account.GlobalName,
		Email:          account.Email,
	}
	if identity.DisplayName == "" {
		identity.DisplayName = account.Username
	}
	if account.Avatar != "" {
		identity.AvatarURL = fmt.Sprintf("%s/avatars/%s/%s.png", DiscordCDNURL, account.ID, account.Avatar)
	}

	return identity, nil
}

func (s *AuthService) githubIdentity(
	ctx context.Context,
	client *http.Client,
	provider *oauthProvider,
) (models.Identity, error) {
	var account struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, provider.userURL, &account); err != nil {
		return models.Identity{}, err
	}
	if account.ID == 0 {
		return models.Identity{}, fmt.Errorf("github account has no id")
	}

	identity := models.Identity{
		Provider:       models.ProviderGithub,
		ProviderUserID: strconv.FormatInt(account.ID, 10),
		DisplayName:    account.Name,
		Email:          account.Email,
		AvatarURL:      account.AvatarURL,
	}
	if identity.DisplayName == "" {
		identity.DisplayName = account.Login
	}

	// Private addresses are only listed on the emails endpoint.
	if identity.Email == "" && provider.emailsURL != "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, provider.emailsURL, &emails); err != nil {
			s.log.Function("githubIdentity").Warn("Failed to list github emails", "error", err)
		}
		for _, email := range emails {
			if email.Primary && email.Verified {
				identity.Email = email.Email
				break
			}
		}
	}

	return identity, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// IssueSession signs a session token for user.
func (s *AuthService) IssueSession(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SessionIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Provider: user.Provider,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, s.log.Function("IssueSession").Err("failed to sign session", err)
	}

	return signed, expiresAt, nil
}

// ParseSession verifies a session token and returns its claims. Every
// failure is reported as types.ErrUnauthorized.
func (s *AuthService) ParseSession(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing session", types.ErrUnauthorized)
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(SessionIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid session", types.ErrUnauthorized)
	}

	return claims, nil
}

// UserFromSession resolves the user behind a session token.
func (s *AuthService) UserFromSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.ParseSession(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	return user, nil
}
