package adminController

import (
	"context"
	"errors"
	"io"
	"time"

	"linkpage/internal/editor"
	"linkpage/internal/events"
	"linkpage/internal/metrics"
	"linkpage/internal/models"
	"linkpage/internal/repositories"
	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type SpotifyAccount interface {
	IsConnected(ctx context.Context) bool
	Disconnect(ctx context.Context) error
}

type VideoSearcher interface {
	Search(ctx context.Context, query string) ([]editor.VideoPick, error)
}

type PlaceFinder interface {
	Lookup(ctx context.Context, name string) (*services.Place, error)
}

type Publisher interface {
	Publish(channel events.Channel, event events.Event) error
}

type AdminControllerInterface interface {
	GetConfig(ctx context.Context, user *models.User) (*ConfigResponse, error)
	SaveConfig(ctx context.Context, doc models.ProfileDocument) (*SaveResponse, error)
	ApplyOperation(ctx context.Context, draft models.ProfileDocument, op editor.Operation) (models.ProfileDocument, error)
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
	SearchYoutube(ctx context.Context, query string) ([]editor.VideoPick, error)
	Geocode(ctx context.Context, name string) (*services.Place, error)
	DisconnectSpotify(ctx context.Context) error
}

type AdminController struct {
	configs  repositories.ProfileConfigRepository
	spotify  SpotifyAccount
	youtube  VideoSearcher
	places   PlaceFinder
	storage  services.ObjectStore
	eventBus Publisher
	now      func() time.Time
	log      logger.Logger
}

type ConfigResponse struct {
	Config           models.ProfileDocument `json:"config"`
	Version          int64                  `json:"version"`
	SpotifyConnected bool                   `json:"spotifyConnected"`
	DiscordID        string                 `json:"discordId,omitempty"`
}

type SaveResponse struct {
	Config  models.ProfileDocument `json:"config"`
	Version int64                  `json:"version"`
}

// UploadRequest is one multipart upload. Draft is the unsaved document the
// dashboard is editing; the stored document is used when it is nil.
type UploadRequest struct {
	Target      string
	GalleryType models.MediaType
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Draft       *models.ProfileDocument
}

type UploadResponse struct {
	URL    string                 `json:"url"`
	Config models.ProfileDocument `json:"config"`
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus Publisher,
) AdminControllerInterface {
	return &AdminController{
		configs:  repos.ProfileConfig,
		spotify:  services.Spotify,
		youtube:  services.Youtube,
		places:   services.Geocoding,
		storage:  services.Storage,
		eventBus: eventBus,
		now:      time.Now,
		log:      logger.New("adminController"),
	}
}

// GetConfig returns the stored document for the dashboard. A Discord admin
// with no presence id configured gets their own id prefilled in the draft.
func (c *AdminController) GetConfig(ctx context.Context, user *models.User) (*ConfigResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("GetConfig")

	stored, err := c.configs.Get(ctx)
	if err != nil {
		return nil, log.Err("failed to load profile config", err)
	}

	response := &ConfigResponse{
		Config:           stored.Document(),
		Version:          stored.Version,
		SpotifyConnected: c.spotify.IsConnected(ctx),
	}

	if user != nil && user.IsDiscord() {
		response.DiscordID = user.ProviderUserID
		response.Config = editor.PrefillDiscordID(response.Config, user.ProviderUserID)
	}

	return response, nil
}

// SaveConfig overwrites the whole document and tells every process about it.
func (c *AdminController) SaveConfig(ctx context.Context, doc models.ProfileDocument) (*SaveResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("SaveConfig")

	version, err := c.configs.Save(ctx, doc)
	if err != nil {
		return nil, err
	}
	metrics.ConfigSaves.Inc()

	saved := doc.Normalize()
	event, err := events.NewEvent(events.CONFIG_UPDATED, events.ConfigUpdatedPayload{
		Config:  saved,
		Version: version,
	})
	if err != nil {
		log.Er("failed to build config event", err, "version", version)
	} else if err := c.eventBus.Publish(events.CONFIG_CHANNEL, event); err != nil {
		// The row is saved; viewers catch up on their next load.
		log.Er("failed to publish config update", err, "version", version)
	}

	return &SaveResponse{Config: saved, Version: version}, nil
}

func (c *AdminController) ApplyOperation(
	ctx context.Context,
	draft models.ProfileDocument,
	op editor.Operation,
) (models.ProfileDocument, error) {
	log := c.log.TraceFromContext(ctx).Function("ApplyOperation")

	doc, err := editor.Apply(draft, op, c.now())
	if err != nil {
		return draft, log.ErrorWithType(types.ErrValidation, err.Error(), "op", op.Op, "list", op.List)
	}
	return doc, nil
}

// Upload stores the file and patches the target field of the draft. Size and
// target are checked before anything is written.
func (c *AdminController) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("Upload")

	if err := editor.CheckUploadSize(req.Size); err != nil {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, log.ErrorWithType(types.ErrTooLarge, err.Error(), "size", req.Size)
	}

	if err := editor.ValidateTarget(req.Target); err != nil {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, log.ErrorWithType(types.ErrValidation, err.Error())
	}

	if req.Body == nil {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, log.ErrorWithType(types.ErrValidation, "file is required")
	}

	var doc models.ProfileDocument
	if req.Draft != nil {
		doc = *req.Draft
	} else {
		stored, err := c.configs.Get(ctx)
		if err != nil {
			metrics.Uploads.WithLabelValues(metrics.ResultError).Inc()
			return nil, log.Err("failed to load profile config", err)
		}
		doc = stored.Document()
	}

	galleryType := req.GalleryType
	if galleryType == "" {
		galleryType = models.MediaImage
	}
	if galleryType != models.MediaImage && galleryType != models.MediaVideo {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, log.ErrorWithType(types.ErrValidation, "galleryType must be image or video")
	}

	if err := editor.CheckTarget(doc, req.Target); err != nil {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		if errors.Is(err, editor.ErrLinkNotFound) {
			return nil, log.ErrorWithType(types.ErrNotFound, err.Error())
		}
		return nil, log.ErrorWithType(types.ErrValidation, err.Error())
	}

	now := c.now()
	name := editor.ObjectName(req.Target, req.Filename, now)

	url, err := c.storage.Put(ctx, name, req.ContentType, req.Body)
	if err != nil {
		metrics.Uploads.WithLabelValues(metrics.ResultError).Inc()
		return nil, log.Err("failed to store upload", err, "name", name)
	}

	patched, err := editor.ApplyUpload(doc, req.Target, url, galleryType, now)
	if err != nil {
		metrics.Uploads.WithLabelValues(metrics.ResultRejected).Inc()
		if errors.Is(err, editor.ErrLinkNotFound) {
			return nil, log.ErrorWithType(types.ErrNotFound, err.Error())
		}
		return nil, log.ErrorWithType(types.ErrValidation, err.Error())
	}

	metrics.Uploads.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info("Upload stored", "target", req.Target, "url", url, "size", req.Size)

	return &UploadResponse{URL: url, Config: patched}, nil
}

func (c *AdminController) SearchYoutube(ctx context.Context, query string) ([]editor.VideoPick, error) {
	return c.youtube.Search(ctx, query)
}

func (c *AdminController) Geocode(ctx context.Context, name string) (*services.Place, error) {
	return c.places.Lookup(ctx, name)
}

func (c *AdminController) DisconnectSpotify(ctx context.Context) error {
	log := c.log.TraceFromContext(ctx).Function("DisconnectSpotify")

	if err := c.spotify.Disconnect(ctx); err != nil {
		return log.Err("failed to disconnect spotify", err)
	}

	log.Info("Spotify account disconnected")
	return nil
}
