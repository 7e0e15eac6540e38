package services

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linkpage/config"
	"linkpage/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	lines []types.ClientLogLine
	err   error
}

func (r *recordingSink) Name() string {
	return "recording"
}

func (r *recordingSink) Write(_ context.Context, lines []types.ClientLogLine) error {
	r.lines = append(r.lines, lines...)
	return r.err
}

func newClientLogTestService(sink ClientLogSink) *ClientLogService {
	service := NewClientLogServiceWithSink(sink)
	service.now = func() time.Time { return fixedNow }
	return service
}

func TestClientLogService_IngestEnrichesLines(t *testing.T) {
	sink := &recordingSink{}
	service := newClientLogTestService(sink)

	result, err := service.Ingest(context.Background(), types.ClientLogBatch{
		SessionID: "session-1",
		Logs: []types.ClientLogEntry{
			{
				Timestamp: "2024-05-01T11:59:58Z",
				Level:     types.LogLevelError,
				Message:   "audio failed",
				Component: "MusicWidget",
				Error:     "decode error",
			},
			{Timestamp: "yesterday", Message: "socket reconnected"},
		},
	}, types.ClientViewer{UserAgent: "Firefox", TraceID: "trace-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	require.Len(t, sink.lines, 2)

	first := sink.lines[0]
	assert.Equal(t, "2024-05-01T11:59:58Z", first.Time)
	assert.Equal(t, "profile", first.Page)
	assert.Equal(t, "error", first.Level)
	assert.Equal(t, "MusicWidget", first.Component)
	assert.Equal(t, "decode error", first.Error)
	assert.Equal(t, "session-1", first.SessionID)
	assert.Equal(t, "Firefox", first.UserAgent)
	assert.Equal(t, "trace-1", first.TraceID)

	second := sink.lines[1]
	assert.Equal(t, fixedNow.Format(time.RFC3339Nano), second.Time)
	assert.Equal(t, "info", second.Level)
}

func TestClientLogService_Validation(t *testing.T) {
	tooMany := make([]types.ClientLogEntry, types.MaxLogBatchSize+1)
	for i := range tooMany {
		tooMany[i].Message = "line"
	}

	tests := []struct {
		name  string
		batch types.ClientLogBatch
	}{
		{name: "missing session", batch: types.ClientLogBatch{Logs: []types.ClientLogEntry{{Message: "x"}}}},
		{name: "empty message", batch: types.ClientLogBatch{SessionID: "s", Logs: []types.ClientLogEntry{{}}}},
		{
			name:  "unknown level",
			batch: types.ClientLogBatch{SessionID: "s", Logs: []types.ClientLogEntry{{Message: "x", Level: "fatal"}}},
		},
		{
			name:  "unknown page",
			batch: types.ClientLogBatch{SessionID: "s", Page: "checkout", Logs: []types.ClientLogEntry{{Message: "x"}}},
		},
		{name: "too many entries", batch: types.ClientLogBatch{SessionID: "s", Logs: tooMany}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			_, err := newClientLogTestService(sink).Ingest(context.Background(), tt.batch, types.ClientViewer{})
			assert.ErrorIs(t, err, types.ErrValidation)
			assert.Empty(t, sink.lines)
		})
	}
}

func TestClientLogService_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("unavailable")}

	_, err := newClientLogTestService(sink).Ingest(context.Background(), types.ClientLogBatch{
		SessionID: "s",
		Logs:      []types.ClientLogEntry{{Message: "hello"}},
	}, types.ClientViewer{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrValidation)
}

func TestVictoriaLogsSink_Write(t *testing.T) {
	var received []types.ClientLogLine
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/insert/jsonline", r.URL.Path)
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))

		reader, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			var line types.ClientLogLine
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
			received = append(received, line)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink := NewVictoriaLogsSink(server.URL + "/")
	err := sink.Write(context.Background(), []types.ClientLogLine{
		{Msg: "one", Stream: clientLogsStream, Page: "profile", Level: "warn"},
		{Msg: "two", Stream: clientLogsStream, Page: "admin", Level: "info"},
	})

	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, "one", received[0].Msg)
	assert.Equal(t, "app,page,level", received[0].Stream)
	assert.Equal(t, "admin", received[1].Page)
}

func TestVictoriaLogsSink_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewVictoriaLogsSink(server.URL).Write(context.Background(), []types.ClientLogLine{{Msg: "x"}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "502"))
}

func TestNewClientLogService_PicksSink(t *testing.T) {
	assert.Equal(t, "server_log", NewClientLogService(config.Config{}).sink.Name())
	assert.Equal(t, "victorialogs", NewClientLogService(config.Config{ClientLogsURL: "http://logs:9428"}).sink.Name())
	assert.NoError(t, NewServerLogSink().Write(context.Background(), []types.ClientLogLine{
		{Msg: "hello", Page: "profile", Level: "error", Error: "boom", TraceID: "t"},
		{Msg: "debug", Page: "admin", Level: "debug"},
	}))
}
