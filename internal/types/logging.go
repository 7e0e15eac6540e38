package types

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// MaxLogBatchSize caps how many browser log lines one request may carry.
const MaxLogBatchSize = 100

// ClientPage names the browser surface a log batch came from.
type ClientPage string

const (
	PageProfile ClientPage = "profile"
	PageAdmin   ClientPage = "admin"
)

// ClientLogEntry is one line reported by the page, e.g. an audio decode
// failure in the music widget or a dropped viewer socket.
type ClientLogEntry struct {
	Timestamp string   `json:"timestamp"`
	Level     LogLevel `json:"level"     validate:"omitempty,oneof=debug info warn error"`
	Message   string   `json:"message"   validate:"required,max=2048"`
	Component string   `json:"component" validate:"max=64"`
	Error     string   `json:"error"     validate:"max=2048"`
	Stack     string   `json:"stack"     validate:"max=8192"`
}

type ClientLogBatch struct {
	SessionID string           `json:"sessionId" validate:"required,max=128"`
	Page      ClientPage       `json:"page"      validate:"omitempty,oneof=profile admin"`
	Logs      []ClientLogEntry `json:"logs"      validate:"max=100,dive"`
}

// ClientViewer is what the server itself knows about the sender.
type ClientViewer struct {
	UserID    string
	UserAgent string
	TraceID   string
}

type ClientLogResult struct {
	Accepted int `json:"accepted"`
}

// ClientLogLine is a browser log line enriched for storage.
type ClientLogLine struct {
	Time      string `json:"_time"`
	Msg       string `json:"_msg"`
	Stream    string `json:"_stream_fields"`
	App       string `json:"app"`
	Page      string `json:"page"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Error     string `json:"error,omitempty"`
	Stack     string `json:"stack,omitempty"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
}
