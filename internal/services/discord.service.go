package services

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"linkpage/config"
	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	ROLE_CACHE_PREFIX = "discord_role:"
	ROLE_CACHE_TTL    = 5 * time.Minute

	ErrorCodeDiscordRequired  = "discord_required"
	ErrorCodeUnauthorizedRole = "unauthorized_role"
)

var (
	ErrDiscordRequired  = errors.New(ErrorCodeDiscordRequired)
	ErrUnauthorizedRole = errors.New(ErrorCodeUnauthorizedRole)
)

// DiscordService gates the admin dashboard on membership of a guild role.
type DiscordService struct {
	session  *discordgo.Session
	guildID  string
	roleID   string
	failOpen bool
	roles    RoleCache
	log      logger.Logger
}

func NewDiscordService(cfg config.Config, roles RoleCache) (*DiscordService, error) {
	log := logger.New("discordService")

	service := &DiscordService{
		guildID:  cfg.DiscordGuildID,
		roleID:   cfg.DiscordRoleID,
		failOpen: cfg.DiscordRoleCheckFailOpen,
		roles:    roles,
		log:      log,
	}

	if cfg.DiscordBotToken == "" {
		return service, nil
	}

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, log.Err("failed to create discord session", err)
	}
	session.Client = &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	service.session = session

	return service, nil
}

func (s *DiscordService) Enabled() bool {
	return s.guildID != "" && s.roleID != ""
}

// CheckAdmin returns nil when user may open the dashboard, otherwise
// ErrDiscordRequired or ErrUnauthorizedRole wrapped in types.ErrForbidden.
func (s *DiscordService) CheckAdmin(ctx context.Context, user *models.User) error {
	log := s.log.TraceFromContext(ctx).Function("CheckAdmin")

	if !s.Enabled() {
		return nil
	}

	if user == nil || !user.IsDiscord() {
		return errors.Join(types.ErrForbidden, ErrDiscordRequired)
	}

	if s.session == nil {
		if s.failOpen {
			log.Warn("Discord bot token missing, allowing login without role check", "userID", user.ID)
			return nil
		}
		log.Warn("Discord bot token missing, denying login", "userID", user.ID)
		return errors.Join(types.ErrForbidden, ErrUnauthorizedRole)
	}

	member, err := s.session.GuildMember(s.guildID, user.ProviderUserID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil &&
			restErr.Response.StatusCode < http.StatusInternalServerError {
			log.Warn("Discord member lookup rejected", "status", restErr.Response.StatusCode, "discordID", user.ProviderUserID)
			s.forgetRole(ctx, user.ProviderUserID)
			return errors.Join(types.ErrForbidden, ErrUnauthorizedRole)
		}

		if s.cachedRole(ctx, user.ProviderUserID) {
			log.Warn("Discord unreachable, using cached role grant", "discordID", user.ProviderUserID, "error", err)
			return nil
		}
		log.Er("Discord member lookup failed", err, "discordID", user.ProviderUserID)
		return errors.Join(types.ErrForbidden, ErrUnauthorizedRole)
	}

	if !slices.Contains(member.Roles, s.roleID) {
		s.forgetRole(ctx, user.ProviderUserID)
		return errors.Join(types.ErrForbidden, ErrUnauthorizedRole)
	}

	s.rememberRole(ctx, user.ProviderUserID)
	return nil
}

func (s *DiscordService) cachedRole(ctx context.Context, discordID string) bool {
	if s.roles == nil {
		return false
	}
	granted, err := s.roles.Granted(ctx, discordID)
	return err == nil && granted
}

func (s *DiscordService) rememberRole(ctx context.Context, discordID string) {
	if s.roles == nil {
		return
	}
	if err := s.roles.Remember(ctx, discordID, ROLE_CACHE_TTL); err != nil {
		s.log.Function("rememberRole").Warn("failed to cache role check", "error", err)
	}
}

func (s *DiscordService) forgetRole(ctx context.Context, discordID string) {
	if s.roles == nil {
		return
	}
	if err := s.roles.Forget(ctx, discordID); err != nil {
		s.log.Function("forgetRole").Warn("failed to clear cached role", "error", err)
	}
}

// RoleCache keeps the last successful role check per Discord user. It is only
// read when Discord cannot be reached.
type RoleCache interface {
	Granted(ctx context.Context, discordID string) (bool, error)
	Remember(ctx context.Context, discordID string, ttl time.Duration) error
	Forget(ctx context.Context, discordID string) error
}

type cacheRoleCache struct {
	cache database.CacheClient
}

func NewCacheRoleCache(cache database.CacheClient) RoleCache {
	if cache == nil {
		return nil
	}
	return &cacheRoleCache{cache: cache}
}

func (c *cacheRoleCache) Granted(ctx context.Context, discordID string) (bool, error) {
	var granted bool
	found, err := database.NewCacheBuilder(c.cache, ROLE_CACHE_PREFIX+discordID).WithContext(ctx).Get(&granted)
	return found && granted, err
}

func (c *cacheRoleCache) Remember(ctx context.Context, discordID string, ttl time.Duration) error {
	return database.NewCacheBuilder(c.cache, ROLE_CACHE_PREFIX+discordID).
		WithStruct(true).
		WithTTL(ttl).
		WithContext(ctx).
		Set()
}

func (c *cacheRoleCache) Forget(ctx context.Context, discordID string) error {
	return database.NewCacheBuilder(c.cache, ROLE_CACHE_PREFIX+discordID).WithContext(ctx).Delete()
}
