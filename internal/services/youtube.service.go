package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"linkpage/config"
	"linkpage/internal/editor"
	"linkpage/internal/metrics"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	YoutubeMaxResults    = 10
	youtubeCacheSize     = 128
	youtubeCacheTTL      = 10 * time.Minute
	YoutubeNotConfigured = "YouTube API key not configured. Add YOUTUBE_API_KEY to your environment variables."
)

type YoutubeService struct {
	search *youtube.SearchService
	cache  *expirable.LRU[string, []editor.VideoPick]
	log    logger.Logger
}

func NewYoutubeService(ctx context.Context, cfg config.Config, opts ...option.ClientOption) (*YoutubeService, error) {
	log := logger.New("youtubeService")

	service := &YoutubeService{
		cache: expirable.NewLRU[string, []editor.VideoPick](youtubeCacheSize, nil, youtubeCacheTTL),
		log:   log,
	}

	if cfg.YoutubeAPIKey == "" {
		log.Warn("YouTube API key not configured, video search disabled")
		return service, nil
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.YoutubeAPIKey)}, opts...)
	yt, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, log.Err("failed to create youtube client", err)
	}
	service.search = youtube.NewSearchService(yt)

	return service, nil
}

func (s *YoutubeService) IsConfigured() bool {
	return s.search != nil
}

// Search returns up to YoutubeMaxResults videos for query. Repeated queries
// are answered from a short lived cache.
func (s *YoutubeService) Search(ctx context.Context, query string) ([]editor.VideoPick, error) {
	log := s.log.TraceFromContext(ctx).Function("Search")

	if s.search == nil {
		return nil, log.ErrorWithType(types.ErrNotConfigured, YoutubeNotConfigured)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, log.ErrorWithType(types.ErrValidation, "search query is required")
	}

	key := strings.ToLower(query)
	if cached, ok := s.cache.Get(key); ok {
		metrics.YoutubeSearches.WithLabelValues(metrics.ResultCacheHit).Inc()
		return cached, nil
	}
	metrics.YoutubeSearches.WithLabelValues(metrics.ResultCacheMiss).Inc()

	resp, err := s.search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(YoutubeMaxResults).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return nil, log.Err("youtube search failed", errors.New(apiErr.Message), "query", query)
		}
		return nil, log.Err("youtube search failed", err, "query", query)
	}

	results := make([]editor.VideoPick, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		results = append(results, editor.VideoPick{
			VideoID:      item.Id.VideoId,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnail:    thumbnailURL(item.Snippet.Thumbnails),
		})
	}

	s.cache.Add(key, results)
	return results, nil
}

func thumbnailURL(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	if thumbnails.Medium != nil && thumbnails.Medium.Url != "" {
		return thumbnails.Medium.Url
	}
	if thumbnails.Default != nil {
		return thumbnails.Default.Url
	}
	return ""
}
