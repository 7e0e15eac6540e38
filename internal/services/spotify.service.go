package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"linkpage/config"
	"linkpage/internal/database"
	"linkpage/internal/metrics"
	"linkpage/internal/models"
	"linkpage/internal/repositories"
	"linkpage/internal/types"
	"linkpage/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	SpotifyAuthURL    = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL   = "https://accounts.spotify.com/api/token"
	SpotifyAPIBaseURL = "https://api.spotify.com/v1"

	NOW_PLAYING_CACHE_KEY = "spotify:now_playing"
	NOW_PLAYING_CACHE_TTL = 10 * time.Second

	// Tokens expiring within this window are refreshed before use.
	spotifyRefreshMargin = 60 * time.Second
	// Assumed lifetime when a token response omits expires_in.
	spotifyTokenLifetime = time.Hour
	SpotifyNotConnected  = "Spotify not connected"
)

var SpotifyScopes = []string{
	"user-read-currently-playing",
	"user-read-playback-state",
	"user-read-recently-played",
}

var (
	ErrSpotifyTokenExchange = errors.New("spotify token exchange failed")
	ErrSpotifyTokenSave     = errors.New("spotify token save failed")
)

type SpotifyService struct {
	repo       repositories.SpotifyRepository
	cache      database.CacheClient
	oauth      *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
	now        func() time.Time
	log        logger.Logger
}

type spotifyCurrentlyPlaying struct {
	IsPlaying  bool  `json:"is_playing"`
	ProgressMs int64 `json:"progress_ms"`
	Item       *struct {
		Name       string `json:"name"`
		DurationMs int64  `json:"duration_ms"`
		Artists    []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			Name   string `json:"name"`
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"album"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	} `json:"item"`
}

func NewSpotifyService(
	cfg config.Config,
	repo repositories.SpotifyRepository,
	cache database.CacheClient,
) *SpotifyService {
	log := logger.New("spotifyService")
	if !cfg.SpotifyConfigured() {
		log.Warn("Spotify client not configured, now playing disabled")
	}

	return &SpotifyService{
		repo:  repo,
		cache: cache,
		oauth: &oauth2.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			RedirectURL:  cfg.SpotifyRedirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   SpotifyAuthURL,
				TokenURL:  SpotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		apiBaseURL: SpotifyAPIBaseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
		log: log,
	}
}

func (s *SpotifyService) IsConfigured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL is the consent page the admin is sent to when connecting an account.
func (s *SpotifyService) AuthURL() string {
	return s.oauth.AuthCodeURL("", oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Connect exchanges an authorization code and replaces the stored token.
func (s *SpotifyService) Connect(ctx context.Context, code string) error {
	log := s.log.TraceFromContext(ctx).Function("Connect")

	token, err := s.oauth.Exchange(s.clientContext(ctx), code)
	if err != nil {
		log.Er("failed to exchange spotify code", err)
		return ErrSpotifyTokenExchange
	}

	if err := s.repo.ReplaceToken(ctx, &models.SpotifyToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    s.tokenExpiry(token),
	}); err != nil {
		log.Er("failed to store spotify token", err)
		return ErrSpotifyTokenSave
	}

	s.clearCache(ctx)
	log.Info("Spotify account connected")
	return nil
}

func (s *SpotifyService) Disconnect(ctx context.Context) error {
	if err := s.repo.DeleteTokens(ctx); err != nil {
		return err
	}
	s.clearCache(ctx)
	return nil
}

func (s *SpotifyService) IsConnected(ctx context.Context) bool {
	_, err := s.repo.GetToken(ctx)
	return err == nil
}

// GetNowPlaying asks Spotify for the current track. Every failure degrades to
// a not-playing snapshot.
func (s *SpotifyService) GetNowPlaying(ctx context.Context) types.NowPlaying {
	log := s.log.TraceFromContext(ctx).Function("GetNowPlaying")

	token, err := s.repo.GetToken(ctx)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			log.Warn("failed to load spotify token", "error", err)
		}
		metrics.SpotifyPolls.WithLabelValues(metrics.ResultNoToken).Inc()
		return types.NowPlaying{}
	}

	accessToken := token.AccessToken
	if token.ExpiresWithin(s.now(), spotifyRefreshMargin) {
		accessToken, err = s.refresh(ctx, token)
		if err != nil {
			metrics.SpotifyPolls.WithLabelValues(metrics.ResultError).Inc()
			return types.NowPlaying{}
		}
	}

	current, ok := s.fetchCurrentlyPlaying(ctx, accessToken)
	if !ok || current.Item == nil {
		metrics.SpotifyPolls.WithLabelValues(metrics.ResultNotPlaying).Inc()
		return types.NowPlaying{}
	}

	nowPlaying := mapCurrentlyPlaying(current)
	if !nowPlaying.IsPlaying {
		metrics.SpotifyPolls.WithLabelValues(metrics.ResultNotPlaying).Inc()
		return nowPlaying
	}

	metrics.SpotifyPolls.WithLabelValues(metrics.ResultPlaying).Inc()

	title := utils.CleanText(nowPlaying.Title, utils.HistoryTextLimit)
	artist := utils.CleanText(nowPlaying.Artist, utils.HistoryTextLimit)
	if err := s.repo.UpsertHistory(ctx, &models.SpotifyHistory{
		SongName: title,
		Artist:   artist,
		CoverURL: nowPlaying.AlbumImageURL,
		PlayedAt: s.now().UTC(),
	}); err != nil {
		log.Warn("failed to record spotify history", "error", err)
	}

	return nowPlaying
}

// Resolve computes the snapshot the public page shows: the live track, else
// the last played one. The result is cached for NOW_PLAYING_CACHE_TTL.
func (s *SpotifyService) Resolve(ctx context.Context) types.NowPlaying {
	log := s.log.TraceFromContext(ctx).Function("Resolve")

	if !s.IsConnected(ctx) {
		return types.NowPlaying{Error: SpotifyNotConnected}
	}

	nowPlaying := s.GetNowPlaying(ctx)
	if !nowPlaying.IsPlaying {
		nowPlaying = types.NowPlaying{}
		last, err := s.repo.LatestHistory(ctx)
		switch {
		case err == nil:
			playedAt := last.PlayedAt
			nowPlaying.Title = last.SongName
			nowPlaying.Artist = last.Artist
			nowPlaying.AlbumImageURL = last.CoverURL
			nowPlaying.PlayedAt = &playedAt
		case !errors.Is(err, types.ErrNotFound):
			log.Warn("failed to load last played track", "error", err)
		}
	}

	s.storeCache(ctx, nowPlaying)
	return nowPlaying
}

// Current serves the cached snapshot while fresh and resolves it otherwise.
func (s *SpotifyService) Current(ctx context.Context) types.NowPlaying {
	if s.cache != nil {
		var cached types.NowPlaying
		found, err := database.NewCacheBuilder(s.cache, NOW_PLAYING_CACHE_KEY).WithContext(ctx).Get(&cached)
		if err == nil && found {
			return cached
		}
	}
	return s.Resolve(ctx)
}

func (s *SpotifyService) refresh(ctx context.Context, stored *models.SpotifyToken) (string, error) {
	log := s.log.TraceFromContext(ctx).Function("refresh")

	token, err := s.oauth.TokenSource(s.clientContext(ctx), &oauth2.Token{
		RefreshToken: stored.RefreshToken,
	}).Token()
	if err != nil {
		metrics.SpotifyTokenRefresh.WithLabelValues(metrics.ResultError).Inc()
		return "", log.Err("failed to refresh spotify token", err)
	}

	refreshToken := ""
	if token.RefreshToken != stored.RefreshToken {
		refreshToken = token.RefreshToken
	}

	if err := s.repo.UpdateToken(ctx, stored.ID, token.AccessToken, refreshToken, s.tokenExpiry(token)); err != nil {
		log.Warn("failed to persist refreshed spotify token", "error", err)
	}

	metrics.SpotifyTokenRefresh.WithLabelValues(metrics.ResultSuccess).Inc()
	return token.AccessToken, nil
}

func (s *SpotifyService) tokenExpiry(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		return s.now().Add(spotifyTokenLifetime)
	}
	return token.Expiry
}

func (s *SpotifyService) fetchCurrentlyPlaying(
	ctx context.Context,
	accessToken string,
) (*spotifyCurrentlyPlaying, bool) {
	log := s.log.TraceFromContext(ctx).Function("fetchCurrentlyPlaying")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		s.apiBaseURL+"/me/player/currently-playing",
		nil,
	)
	if err != nil {
		log.Er("failed to build now playing request", err)
		return nil, false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Warn("now playing request failed", "error", err)
		return nil, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode >= http.StatusBadRequest {
		return nil, false
	}

	var current spotifyCurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&current); err != nil {
		log.Warn("failed to decode now playing response", "error", err)
		return nil, false
	}

	return &current, true
}

func mapCurrentlyPlaying(current *spotifyCurrentlyPlaying) types.NowPlaying {
	artists := make([]string, 0, len(current.Item.Artists))
	for _, artist := range current.Item.Artists {
		artists = append(artists, artist.Name)
	}

	nowPlaying := types.NowPlaying{
		IsPlaying:  current.IsPlaying,
		Title:      current.Item.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      current.Item.Album.Name,
		SongURL:    current.Item.ExternalURLs.Spotify,
		ProgressMs: current.ProgressMs,
		DurationMs: current.Item.DurationMs,
	}
	if len(current.Item.Album.Images) > 0 {
		nowPlaying.AlbumImageURL = current.Item.Album.Images[0].URL
	}

	return nowPlaying
}

func (s *SpotifyService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func (s *SpotifyService) storeCache(ctx context.Context, nowPlaying types.NowPlaying) {
	if s.cache == nil {
		return
	}
	if err := database.NewCacheBuilder(s.cache, NOW_PLAYING_CACHE_KEY).
		WithStruct(nowPlaying).
		WithTTL(NOW_PLAYING_CACHE_TTL).
		WithContext(ctx).
		Set(); err != nil {
		s.log.Function("storeCache").Warn("failed to cache now playing", "error", err)
	}
}

func (s *SpotifyService) clearCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := database.NewCacheBuilder(s.cache, NOW_PLAYING_CACHE_KEY).WithContext(ctx).Delete(); err != nil {
		s.log.Function("clearCache").Warn("failed to clear now playing cache", "error", err)
	}
}
