package live

import (
	"context"
	"sync"
	"time"

	"linkpage/config"
	"linkpage/internal/events"
	"linkpage/internal/models"
	"linkpage/internal/presence"
	"linkpage/internal/types"
	"linkpage/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

// Viewer message types
const (
	MessageSnapshot      = "snapshot"
	MessageConfigUpdated = "config_updated"
	MessageNowPlaying    = "now_playing"
	MessageStatus        = "status"
)

type MusicSource string

const (
	MusicSpotifyLive    MusicSource = "spotify_live"
	MusicSpotifyHistory MusicSource = "spotify_history"
	MusicLocal          MusicSource = "local"
)

type MusicView struct {
	Source         MusicSource `json:"source"`
	Title          string      `json:"title"`
	Artist         string      `json:"artist"`
	Album          string      `json:"album,omitempty"`
	CoverURL       string      `json:"coverUrl"`
	AudioURL       string      `json:"audioUrl,omitempty"`
	SongURL        string      `json:"songUrl,omitempty"`
	YoutubeVideoID string      `json:"youtubeVideoId,omitempty"`
	ProgressMs     int64       `json:"progressMs,omitempty"`
	DurationMs     int64       `json:"durationMs,omitempty"`
	PlayedAgo      string      `json:"playedAgo,omitempty"`
}

// View is everything a public viewer needs to render the page.
type View struct {
	Config  models.ProfileDocument `json:"config"`
	Version int64                  `json:"version"`
	Status  presence.Status        `json:"status"`
	Music   MusicView              `json:"music"`
}

type ConfigSource interface {
	Get(ctx context.Context) (*models.ProfileConfig, error)
}

type Subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler) error
}

type Broadcaster interface {
	Broadcast(messageType string, data any)
}

// Relay is the presence subscription for one discord id.
type Relay interface {
	Start(ctx context.Context)
	Stop()
	Snapshot() *presence.Snapshot
}

type RelayFactory func(discordID string, onUpdate func(*presence.Snapshot)) Relay

// NewRelayFactory builds relays that dial the configured presence relay.
func NewRelayFactory(cfg config.Config) RelayFactory {
	return func(discordID string, onUpdate func(*presence.Snapshot)) Relay {
		return presence.NewClient(presence.ClientConfig{
			URL:       cfg.PresenceRelayURL,
			DiscordID: discordID,
			OnUpdate:  onUpdate,
		})
	}
}

// Profile holds the state served to public viewers. One instance per process.
type Profile struct {
	configs     ConfigSource
	broadcaster Broadcaster
	newRelay    RelayFactory
	now         func() time.Time
	log         logger.Logger

	// applyMu serializes ApplyDocument so relay swaps and broadcasts follow
	// version order.
	applyMu sync.Mutex

	mu         sync.RWMutex
	ctx        context.Context
	doc        models.ProfileDocument
	version    int64
	loaded     bool
	nowPlaying types.NowPlaying
	relay      Relay
	relayKey   models.Presence
}

func NewProfile(configs ConfigSource, broadcaster Broadcaster, newRelay RelayFactory) *Profile {
	return &Profile{
		configs:     configs,
		broadcaster: broadcaster,
		newRelay:    newRelay,
		now:         time.Now,
		log:         logger.New("live").File("profile"),
		ctx:         context.Background(),
		doc:         models.DefaultDocument(),
	}
}

// Start loads the stored document and follows config and now playing events.
// Relays started later live until ctx is cancelled or Stop is called.
func (p *Profile) Start(ctx context.Context, bus Subscriber) error {
	log := p.log.Function("Start")

	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	stored, err := p.configs.Get(ctx)
	if err != nil {
		return log.Err("failed to load profile document", err)
	}
	p.ApplyDocument(stored.Document(), stored.Version)

	if bus == nil {
		return nil
	}

	if err := bus.Subscribe(events.CONFIG_CHANNEL, func(event events.Event) error {
		var payload events.ConfigUpdatedPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		p.ApplyDocument(payload.Config, payload.Version)
		return nil
	}); err != nil {
		return log.Err("failed to subscribe to config updates", err)
	}

	if err := bus.Subscribe(events.NOW_PLAYING_CHANNEL, func(event events.Event) error {
		var payload events.NowPlayingPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		p.SetNowPlaying(payload.NowPlaying)
		return nil
	}); err != nil {
		return log.Err("failed to subscribe to now playing", err)
	}

	log.Info("Live profile started", "version", stored.Version)
	return nil
}

// Stop tears down the presence relay.
func (p *Profile) Stop() {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	relay := p.relay
	p.relay = nil
	p.relayKey = models.Presence{}
	p.mu.Unlock()

	if relay != nil {
		relay.Stop()
	}
}

// ApplyDocument swaps the whole document. Versions older than the held one
// are ignored. A change to the presence settings restarts the relay.
func (p *Profile) ApplyDocument(doc models.ProfileDocument, version int64) {
	log := p.log.Function("ApplyDocument")

	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	p.mu.Lock()
	if p.loaded && version < p.version {
		p.mu.Unlock()
		log.Debug("Ignoring stale document", "version", version, "current", p.version)
		return
	}

	doc = doc.Normalize()
	p.doc = doc
	p.version = version
	p.loaded = true

	wanted := doc.Profile.Presence
	var stopped, started Relay
	if wanted != p.relayKey {
		stopped = p.relay
		p.relay = nil
		p.relayKey = wanted

		if wanted.Mode == models.PresenceAuto && wanted.DiscordID != "" && p.newRelay != nil {
			started = p.newRelay(wanted.DiscordID, p.onPresence)
			p.relay = started
		}
	}
	ctx := p.ctx
	p.mu.Unlock()

	if stopped != nil {
		stopped.Stop()
	}
	if started != nil {
		log.Info("Starting presence relay", "discordID", wanted.DiscordID)
		started.Start(ctx)
	}

	p.broadcast(MessageConfigUpdated, events.ConfigUpdatedPayload{Config: doc, Version: version})
	if stopped != nil || started != nil {
		p.broadcast(MessageStatus, p.Status())
	}
}

func (p *Profile) onPresence(_ *presence.Snapshot) {
	p.broadcast(MessageStatus, p.Status())
}

// SetNowPlaying replaces the held track snapshot.
func (p *Profile) SetNowPlaying(nowPlaying types.NowPlaying) {
	p.mu.Lock()
	p.nowPlaying = nowPlaying
	p.mu.Unlock()

	p.broadcast(MessageNowPlaying, p.Music())
}

func (p *Profile) Document() (models.ProfileDocument, int64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc, p.version
}

func (p *Profile) Status() presence.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statusLocked()
}

func (p *Profile) statusLocked() presence.Status {
	var snapshot *presence.Snapshot
	if p.relay != nil {
		snapshot = p.relay.Snapshot()
	}
	return presence.Aggregate(p.doc.Profile.Presence.Mode, snapshot, p.doc.Profile.Status)
}

func (p *Profile) Music() MusicView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.musicLocked()
}

// musicLocked picks the live track, then the last played one, then the
// document's own audio.
func (p *Profile) musicLocked() MusicView {
	music := p.doc.Music
	np := p.nowPlaying

	if music.SpotifyEnabled && np.HasTrack() {
		view := MusicView{
			Title:      np.Title,
			Artist:     np.Artist,
			Album:      np.Album,
			CoverURL:   np.AlbumImageURL,
			SongURL:    np.SongURL,
			ProgressMs: np.ProgressMs,
			DurationMs: np.DurationMs,
		}

		if np.IsPlaying {
			view.Source = MusicSpotifyLive
			return view
		}

		view.Source = MusicSpotifyHistory
		if np.PlayedAt != nil {
			view.PlayedAgo = utils.FormatTimeAgo(*np.PlayedAt, p.now())
		}
		return view
	}

	return MusicView{
		Source:         MusicLocal,
		Title:          music.Title,
		Artist:         music.Artist,
		CoverURL:       music.CoverURL,
		AudioURL:       music.AudioURL,
		YoutubeVideoID: music.YoutubeVideoID,
	}
}

func (p *Profile) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return View{
		Config:  p.doc,
		Version: p.version,
		Status:  p.statusLocked(),
		Music:   p.musicLocked(),
	}
}

// Snapshot is the first message a new viewer receives.
func (p *Profile) Snapshot() any {
	return p.View()
}

func (p *Profile) broadcast(messageType string, data any) {
	if p.broadcaster == nil {
		return
	}
	p.broadcaster.Broadcast(messageType, data)
}
