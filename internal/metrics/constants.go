package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "linkpage_http_requests_total"
	MetricNameHTTPRequestDuration  = "linkpage_http_request_duration_seconds"
	MetricNameSpotifyPolls         = "linkpage_spotify_polls_total"
	MetricNameSpotifyTokenRefresh  = "linkpage_spotify_token_refresh_total"
	MetricNamePresenceConnections  = "linkpage_presence_connections_total"
	MetricNameUploads              = "linkpage_uploads_total"
	MetricNameConfigSaves          = "linkpage_config_saves_total"
	MetricNameWebsocketViewers     = "linkpage_websocket_viewers"
	MetricNameYoutubeSearches      = "linkpage_youtube_searches_total"
	MetricNameNewsletterSubscribes = "linkpage_newsletter_subscribes_total"
	MetricNameClientLogLines       = "linkpage_client_log_lines_total"
)

// Metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextSpotifyPolls         = "Now playing lookups by outcome"
	HelpTextSpotifyTokenRefresh  = "Spotify access token refreshes by outcome"
	HelpTextPresenceConnections  = "Presence relay connection lifecycle events"
	HelpTextUploads              = "Admin media uploads by outcome"
	HelpTextConfigSaves          = "Profile document saves"
	HelpTextWebsocketViewers     = "Open public viewer sockets"
	HelpTextYoutubeSearches      = "YouTube searches by cache outcome"
	HelpTextNewsletterSubscribes = "Newsletter signups by outcome"
	HelpTextClientLogLines       = "Browser log lines received by page and level"
)

// Labels
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelResult = "result"
	LabelEvent  = "event"
	LabelPage   = "page"
	LabelLevel  = "level"
)

// Label values
const (
	ResultPlaying    = "playing"
	ResultNotPlaying = "not_playing"
	ResultNoToken    = "no_token"
	ResultError      = "error"
	ResultSuccess    = "success"
	ResultRejected   = "rejected"
	ResultCacheHit   = "cache_hit"
	ResultCacheMiss  = "cache_miss"
	ResultDuplicate  = "duplicate"

	EventConnected  = "connected"
	EventSubscribed = "subscribed"
	EventDisconnect = "disconnected"
	EventReconnect  = "reconnect_scheduled"
	EventDialFailed = "dial_failed"
)

var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
