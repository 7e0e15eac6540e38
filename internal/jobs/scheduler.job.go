package jobs

import (
	"linkpage/config"
	"linkpage/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const EveryFiveSeconds = services.EveryFiveSeconds

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
	documents DocumentSource,
	publisher Publisher,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	if !services.Spotify.IsConfigured() {
		log.Info("Spotify not configured, now playing job not registered")
		return nil
	}

	nowPlayingJob := NewNowPlayingJob(services.Spotify, documents, publisher, EveryFiveSeconds)
	if err := schedulerService.AddJob(nowPlayingJob); err != nil {
		return log.Err("failed to register now playing job", err)
	}
	log.Info("Registered now playing job", "schedule", "5s")

	return nil
}
