package config

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion           string `mapstructure:"GENERAL_VERSION"`
	Environment              string `mapstructure:"ENVIRONMENT"`
	ServerPort               int    `mapstructure:"SERVER_PORT"`
	PublicBaseURL            string `mapstructure:"PUBLIC_BASE_URL"`
	DatabaseHost             string `mapstructure:"DB_HOST"`
	DatabasePort             int    `mapstructure:"DB_PORT"`
	DatabaseName             string `mapstructure:"DB_NAME"`
	DatabaseUser             string `mapstructure:"DB_USER"`
	DatabasePassword         string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress     string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort        int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset       int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins         string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SessionSecret            string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours          int    `mapstructure:"SESSION_TTL_HOURS"`
	SpotifyClientID          string `mapstructure:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret      string `mapstructure:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI       string `mapstructure:"SPOTIFY_REDIRECT_URI"`
	DiscordClientID          string `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret      string `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordBotToken          string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordGuildID           string `mapstructure:"DISCORD_GUILD_ID"`
	DiscordRoleID            string `mapstructure:"DISCORD_ROLE_ID"`
	DiscordRoleCheckFailOpen bool   `mapstructure:"DISCORD_ROLE_CHECK_FAIL_OPEN"`
	GithubClientID           string `mapstructure:"GITHUB_CLIENT_ID"`
	GithubClientSecret       string `mapstructure:"GITHUB_CLIENT_SECRET"`
	YoutubeAPIKey            string `mapstructure:"YOUTUBE_API_KEY"`
	PresenceRelayURL         string `mapstructure:"PRESENCE_RELAY_URL"`
	StorageBucket            string `mapstructure:"STORAGE_BUCKET"`
	StoragePublicBaseURL     string `mapstructure:"STORAGE_PUBLIC_BASE_URL"`
	UploadDir                string `mapstructure:"UPLOAD_DIR"`
	SchedulerEnabled         bool   `mapstructure:"SCHEDULER_ENABLED"`
	OtelExporterEndpoint     string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ClientLogsURL            string `mapstructure:"CLIENT_LOGS_URL"`
}

const (
	DefaultPresenceRelayURL = "wss://api.lanyard.rest/socket"
	DefaultUploadDir        = "uploads"
	DefaultSessionTTLHours  = 24 * 7
)

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "PUBLIC_BASE_URL",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"SESSION_SECRET", "SESSION_TTL_HOURS",
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI",
	"DISCORD_CLIENT_ID", "DISCORD_CLIENT_SECRET", "DISCORD_BOT_TOKEN",
	"DISCORD_GUILD_ID", "DISCORD_ROLE_ID", "DISCORD_ROLE_CHECK_FAIL_OPEN",
	"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET",
	"YOUTUBE_API_KEY",
	"PRESENCE_RELAY_URL",
	"STORAGE_BUCKET", "STORAGE_PUBLIC_BASE_URL", "UPLOAD_DIR",
	"SCHEDULER_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"CLIENT_LOGS_URL",
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("PRESENCE_RELAY_URL", DefaultPresenceRelayURL)
	viper.SetDefault("UPLOAD_DIR", DefaultUploadDir)
	viper.SetDefault("SESSION_TTL_HOURS", DefaultSessionTTLHours)
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("SCHEDULER_ENABLED", true)

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"spotify", config.SpotifyConfigured(),
		"discordRoleCheck", config.DiscordRoleCheckEnabled(),
	)

	ConfigInstance = config
	return config, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// SpotifyConfigured reports whether the Spotify connect flow can run.
func (c Config) SpotifyConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != "" && c.SpotifyRedirectURI != ""
}

// DiscordRoleCheckEnabled reports whether admin access is gated on a guild role.
func (c Config) DiscordRoleCheckEnabled() bool {
	return c.DiscordGuildID != "" && c.DiscordRoleID != ""
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.DatabaseHost == "" {
		return log.ErrMsg("Fatal error: DB_HOST is required")
	}

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.ErrMsg("Fatal error: DB_CACHE_ADDRESS and DB_CACHE_PORT are required")
	}

	if len(config.SessionSecret) < 32 {
		return log.ErrMsg("Fatal error: SESSION_SECRET must be at least 32 characters")
	}

	if config.SessionTTLHours <= 0 {
		return log.Error(
			"Fatal error: invalid session ttl",
			"hours", config.SessionTTLHours,
		)
	}

	if config.SpotifyClientID != "" && config.SpotifyClientSecret == "" {
		return log.ErrMsg("Fatal error: SPOTIFY_CLIENT_SECRET required when SPOTIFY_CLIENT_ID is set")
	}

	if config.DiscordRoleCheckEnabled() && config.DiscordBotToken == "" {
		if config.DiscordRoleCheckFailOpen {
			log.Warn("DISCORD_BOT_TOKEN missing, role check will allow every discord login")
		} else {
			log.Warn("DISCORD_BOT_TOKEN missing, role check will deny every login")
		}
	}

	return nil
}
