package spotifyController

import (
	"context"
	"errors"
	"net/url"

	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const AdminPath = "/me/admin"

// Callback outcomes appended to the dashboard redirect.
const (
	CallbackConnected        = "spotify_connected"
	CallbackNoCode           = "no_code"
	CallbackTokenFetchFailed = "token_fetch_failed"
	CallbackSaveFailed       = "db_save_failed"
)

type SpotifyClient interface {
	IsConfigured() bool
	AuthURL() string
	Connect(ctx context.Context, code string) error
	Current(ctx context.Context) types.NowPlaying
}

type SpotifyControllerInterface interface {
	NowPlaying(ctx context.Context) types.NowPlaying
	AuthURL() (string, error)
	Callback(ctx context.Context, code string) string
}

type SpotifyController struct {
	spotify SpotifyClient
	log     logger.Logger
}

func New(services services.Service) SpotifyControllerInterface {
	return &SpotifyController{
		spotify: services.Spotify,
		log:     logger.New("spotifyController"),
	}
}

func (c *SpotifyController) NowPlaying(ctx context.Context) types.NowPlaying {
	return c.spotify.Current(ctx)
}

func (c *SpotifyController) AuthURL() (string, error) {
	if !c.spotify.IsConfigured() {
		return "", c.log.Function("AuthURL").ErrorWithType(types.ErrNotConfigured, "spotify client is not configured")
	}
	return c.spotify.AuthURL(), nil
}

// Callback connects the account and returns the dashboard path carrying the
// outcome.
func (c *SpotifyController) Callback(ctx context.Context, code string) string {
	log := c.log.TraceFromContext(ctx).Function("Callback")

	if code == "" {
		log.Warn("spotify callback without code")
		return dashboardPath("error", CallbackNoCode)
	}

	err := c.spotify.Connect(ctx, code)
	switch {
	case err == nil:
		return dashboardPath("success", CallbackConnected)
	case errors.Is(err, services.ErrSpotifyTokenSave):
		return dashboardPath("error", CallbackSaveFailed)
	default:
		return dashboardPath("error", CallbackTokenFetchFailed)
	}
}

func dashboardPath(key, value string) string {
	return AdminPath + "?" + url.Values{key: {value}}.Encode()
}
