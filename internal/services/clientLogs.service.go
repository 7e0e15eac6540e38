package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"linkpage/config"
	"linkpage/internal/metrics"
	"linkpage/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	clientLogsApp    = "linkpage"
	clientLogsStream = "app,page,level"
)

// ClientLogSink stores enriched browser log lines.
type ClientLogSink interface {
	Write(ctx context.Context, lines []types.ClientLogLine) error
	Name() string
}

// ClientLogService takes the diagnostics the profile page and dashboard send
// back (audio failures, socket drops, upload errors) and hands them to a sink.
type ClientLogService struct {
	sink     ClientLogSink
	validate *validator.Validate
	now      func() time.Time
	log      logger.Logger
}

// NewClientLogService ships to VictoriaLogs when CLIENT_LOGS_URL is set and to
// the server log otherwise.
func NewClientLogService(cfg config.Config) *ClientLogService {
	var sink ClientLogSink
	if cfg.ClientLogsURL != "" {
		sink = NewVictoriaLogsSink(cfg.ClientLogsURL)
	} else {
		sink = NewServerLogSink()
	}
	return NewClientLogServiceWithSink(sink)
}

func NewClientLogServiceWithSink(sink ClientLogSink) *ClientLogService {
	log := logger.New("clientLogService")
	log.Info("Client log sink selected", "sink", sink.Name())

	return &ClientLogService{
		sink:     sink,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		log:      log,
	}
}

func (s *ClientLogService) Ingest(
	ctx context.Context,
	batch types.ClientLogBatch,
	viewer types.ClientViewer,
) (*types.ClientLogResult, error) {
	log := s.log.TraceFromContext(ctx).Function("Ingest")

	if err := s.validate.Struct(batch); err != nil {
		return nil, log.ErrorWithType(types.ErrValidation, err.Error())
	}
	if len(batch.Logs) == 0 {
		return &types.ClientLogResult{}, nil
	}

	page := batch.Page
	if page == "" {
		page = types.PageProfile
	}

	lines := make([]types.ClientLogLine, 0, len(batch.Logs))
	for _, entry := range batch.Logs {
		line := s.enrich(entry, page, batch.SessionID, viewer)
		metrics.ClientLogLines.WithLabelValues(line.Page, line.Level).Inc()
		lines = append(lines, line)
	}

	if err := s.sink.Write(ctx, lines); err != nil {
		return nil, log.Err("failed to write client logs", err,
			"sink", s.sink.Name(),
			"count", len(lines),
			"sessionID", batch.SessionID)
	}

	return &types.ClientLogResult{Accepted: len(lines)}, nil
}

// enrich fills defaults and attaches the server's view of the sender. A
// missing or unparseable browser timestamp is replaced by receive time.
func (s *ClientLogService) enrich(
	entry types.ClientLogEntry,
	page types.ClientPage,
	sessionID string,
	viewer types.ClientViewer,
) types.ClientLogLine {
	level := entry.Level
	if level == "" {
		level = types.LogLevelInfo
	}

	stamp := entry.Timestamp
	if _, err := time.Parse(time.RFC3339Nano, stamp); err != nil {
		stamp = s.now().UTC().Format(time.RFC3339Nano)
	}

	return types.ClientLogLine{
		Time:      stamp,
		Msg:       entry.Message,
		Stream:    clientLogsStream,
		App:       clientLogsApp,
		Page:      string(page),
		Level:     string(level),
		Component: entry.Component,
		Error:     entry.Error,
		Stack:     entry.Stack,
		SessionID: sessionID,
		UserID:    viewer.UserID,
		UserAgent: viewer.UserAgent,
		TraceID:   viewer.TraceID,
	}
}

// VictoriaLogsSink posts gzip'd JSON lines to /insert/jsonline.
type VictoriaLogsSink struct {
	endpoint   string
	httpClient *http.Client
}

func NewVictoriaLogsSink(baseURL string) *VictoriaLogsSink {
	return &VictoriaLogsSink{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/insert/jsonline",
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (v *VictoriaLogsSink) Name() string {
	return "victorialogs"
}

func (v *VictoriaLogsSink) Write(ctx context.Context, lines []types.ClientLogLine) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	encoder := json.NewEncoder(gz)
	for _, line := range lines {
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("encode client log line: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress client logs: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("victorialogs returned status %d", resp.StatusCode)
	}
	return nil
}

// ServerLogSink writes browser lines into this process's own log stream.
type ServerLogSink struct {
	log logger.Logger
}

func NewServerLogSink() *ServerLogSink {
	return &ServerLogSink{log: logger.New("client")}
}

func (s *ServerLogSink) Name() string {
	return "server_log"
}

func (s *ServerLogSink) Write(_ context.Context, lines []types.ClientLogLine) error {
	for _, line := range lines {
		log := s.log.Function(line.Page)
		if line.TraceID != "" {
			log = log.WithTraceID(line.TraceID)
		}

		args := []any{
			"component", line.Component,
			"sessionID", line.SessionID,
			"userID", line.UserID,
			"clientTime", line.Time,
		}

		switch types.LogLevel(line.Level) {
		case types.LogLevelError, types.LogLevelWarn:
			if line.Error != "" {
				args = append(args, "error", line.Error)
			}
			log.Warn(line.Msg, args...)
		case types.LogLevelDebug:
			log.Debug(line.Msg, args...)
		default:
			log.Info(line.Msg, args...)
		}
	}
	return nil
}
