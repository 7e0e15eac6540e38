package jobs

import (
	"context"

	"linkpage/internal/events"
	"linkpage/internal/models"
	"linkpage/internal/services"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type NowPlayingResolver interface {
	Resolve(ctx context.Context) types.NowPlaying
}

type DocumentSource interface {
	Document() (models.ProfileDocument, int64)
}

type Publisher interface {
	Publish(channel events.Channel, event events.Event) error
}

// NowPlayingJob polls Spotify and publishes the result for every process's
// live profile.
type NowPlayingJob struct {
	spotify   NowPlayingResolver
	documents DocumentSource
	publisher Publisher
	log       logger.Logger
	schedule  services.Schedule
}

func NewNowPlayingJob(
	spotify NowPlayingResolver,
	documents DocumentSource,
	publisher Publisher,
	schedule services.Schedule,
) *NowPlayingJob {
	return &NowPlayingJob{
		spotify:   spotify,
		documents: documents,
		publisher: publisher,
		log:       logger.New("nowPlayingJob"),
		schedule:  schedule,
	}
}

func (j *NowPlayingJob) Name() string {
	return "SpotifyNowPlaying"
}

func (j *NowPlayingJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	doc, _ := j.documents.Document()
	if !doc.Music.SpotifyEnabled {
		return nil
	}

	nowPlaying := j.spotify.Resolve(ctx)

	event, err := events.NewEvent(events.NOW_PLAYING, events.NowPlayingPayload{NowPlaying: nowPlaying})
	if err != nil {
		return log.Err("failed to build now playing event", err)
	}

	if err := j.publisher.Publish(events.NOW_PLAYING_CHANNEL, event); err != nil {
		return log.Err("failed to publish now playing", err)
	}

	return nil
}

func (j *NowPlayingJob) Schedule() services.Schedule {
	return j.schedule
}
