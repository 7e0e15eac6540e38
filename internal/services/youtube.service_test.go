package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"linkpage/config"
	"linkpage/internal/editor"
	"linkpage/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

const youtubeSearchResponse = `{
	"items": [
		{
			"id": {"kind": "youtube#video", "videoId": "abc123"},
			"snippet": {
				"title": "Live Set",
				"channelTitle": "Band",
				"thumbnails": {
					"default": {"url": "https://i.ytimg.com/abc/default.jpg"},
					"medium": {"url": "https://i.ytimg.com/abc/mq.jpg"}
				}
			}
		},
		{
			"id": {"kind": "youtube#video", "videoId": "def456"},
			"snippet": {
				"title": "Acoustic",
				"channelTitle": "Other",
				"thumbnails": {"default": {"url": "https://i.ytimg.com/def/default.jpg"}}
			}
		}
	]
}`

func TestYoutubeService_Search(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/youtube/v3/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "lofi beats", r.URL.Query().Get("q"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(youtubeSearchResponse))
	}))
	defer server.Close()

	service, err := NewYoutubeService(
		context.Background(),
		config.Config{YoutubeAPIKey: "test-key"},
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)

	results, err := service.Search(context.Background(), "  lofi beats ")
	require.NoError(t, err)
	assert.Equal(t, []editor.VideoPick{
		{VideoID: "abc123", Title: "Live Set", ChannelTitle: "Band", Thumbnail: "https://i.ytimg.com/abc/mq.jpg"},
		{VideoID: "def456", Title: "Acoustic", ChannelTitle: "Other", Thumbnail: "https://i.ytimg.com/def/default.jpg"},
	}, results)

	again, err := service.Search(context.Background(), "LOFI beats")
	require.NoError(t, err)
	assert.Equal(t, results, again)
	assert.Equal(t, int32(1), requests.Load(), "second search served from cache")
}

func TestYoutubeService_Errors(t *testing.T) {
	unconfigured, err := NewYoutubeService(context.Background(), config.Config{})
	require.NoError(t, err)
	assert.False(t, unconfigured.IsConfigured())

	_, err = unconfigured.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, types.ErrNotConfigured)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	service, err := NewYoutubeService(
		context.Background(),
		config.Config{YoutubeAPIKey: "k"},
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)

	_, err = service.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = service.Search(context.Background(), "music")
	require.Error(t, err)
	assert.Equal(t, "quota exceeded", err.Error())
}
