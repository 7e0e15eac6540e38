package config

import (
	"strings"
	"testing"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		ServerPort:           8288,
		DatabaseHost:         "localhost",
		DatabaseCacheAddress: "localhost",
		DatabaseCachePort:    6379,
		SessionSecret:        strings.Repeat("s", 32),
		SessionTTLHours:      DefaultSessionTTLHours,
	}
}

func TestValidateConfig(t *testing.T) {
	log := logger.New("test")

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing port",
			mutate:      func(c *Config) { c.ServerPort = 0 },
			expectError: true,
		},
		{
			name:        "missing db host",
			mutate:      func(c *Config) { c.DatabaseHost = "" },
			expectError: true,
		},
		{
			name:        "missing cache port",
			mutate:      func(c *Config) { c.DatabaseCachePort = 0 },
			expectError: true,
		},
		{
			name:        "short session secret",
			mutate:      func(c *Config) { c.SessionSecret = "short" },
			expectError: true,
		},
		{
			name:        "spotify id without secret",
			mutate:      func(c *Config) { c.SpotifyClientID = "abc" },
			expectError: true,
		},
		{
			name: "role check without bot token only warns",
			mutate: func(c *Config) {
				c.DiscordGuildID = "1"
				c.DiscordRoleID = "2"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := validateConfig(cfg, log)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.SpotifyConfigured())
	assert.False(t, cfg.DiscordRoleCheckEnabled())

	cfg.SpotifyClientID = "id"
	cfg.SpotifyClientSecret = "secret"
	cfg.SpotifyRedirectURI = "http://localhost/api/spotify/callback"
	cfg.DiscordGuildID = "guild"
	cfg.DiscordRoleID = "role"

	assert.True(t, cfg.SpotifyConfigured())
	assert.True(t, cfg.DiscordRoleCheckEnabled())
}
