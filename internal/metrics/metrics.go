package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Live profile metrics
var (
	SpotifyPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpotifyPolls,
			Help: HelpTextSpotifyPolls,
		},
		[]string{LabelResult},
	)

	SpotifyTokenRefresh = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpotifyTokenRefresh,
			Help: HelpTextSpotifyTokenRefresh,
		},
		[]string{LabelResult},
	)

	PresenceConnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePresenceConnections,
			Help: HelpTextPresenceConnections,
		},
		[]string{LabelEvent},
	)

	WebsocketViewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameWebsocketViewers,
			Help: HelpTextWebsocketViewers,
		},
	)
)

// Admin metrics
var (
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUploads,
			Help: HelpTextUploads,
		},
		[]string{LabelResult},
	)

	ConfigSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameConfigSaves,
			Help: HelpTextConfigSaves,
		},
	)

	YoutubeSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameYoutubeSearches,
			Help: HelpTextYoutubeSearches,
		},
		[]string{LabelResult},
	)

	NewsletterSubscribes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNewsletterSubscribes,
			Help: HelpTextNewsletterSubscribes,
		},
		[]string{LabelResult},
	)
)

// Client diagnostics
var ClientLogLines = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricNameClientLogLines,
		Help: HelpTextClientLogLines,
	},
	[]string{LabelPage, LabelLevel},
)
