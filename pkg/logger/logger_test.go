package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	logger "github.com/atagle123/AgentFace/pkg/logger"
	assert "github.com/stretchr/testify/assert"
	codes "go.opentelemetry.io/otel/codes"
)

func Test_logger_001(t *testing.T) {
	assert := assert.New(t)
	level, err := logger.ParseLevel("debug")
	assert.NoError(err)
	assert.Equal(slog.LevelDebug, level)

	_, err = logger.ParseLevel("loud")
	assert.Error(err)

	_, err = logger.New(&bytes.Buffer{}, "xml", slog.LevelInfo)
	assert.Error(err)
}

func Test_logger_002(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	log, err := logger.New(&buf, logger.FormatJSON, slog.LevelInfo)
	assert.NoError(err)

	ctx := logger.ToContext(context.Background(), log)
	assert.False(logger.IsDebugEnabled(ctx))
	scoped, ctx := logger.With(ctx, "session", "abc")
	assert.Same(scoped, logger.FromContext(ctx))
	logger.FromContext(ctx).Info("hello")

	var record map[string]any
	assert.NoError(json.Unmarshal(buf.Bytes(), &record))
	assert.Equal("hello", record["msg"])
	assert.Equal("abc", record["session"])
}

func Test_logger_003(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(slog.Default(), logger.FromContext(context.Background()))
}

func Test_logger_004(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	log, err := logger.New(&buf, logger.FormatJSON, slog.LevelInfo)
	assert.NoError(err)

	var scoped bool
	handler := logger.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = logger.FromContext(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	assert.True(scoped)
	assert.Equal(http.StatusTeapot, w.Code)
	var record map[string]any
	assert.NoError(json.Unmarshal(buf.Bytes(), &record))
	assert.Equal("/mcp", record["path"])
	assert.EqualValues(http.StatusTeapot, record["status"])
}

func Test_trace_001(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	log, err := logger.New(&buf, logger.FormatJSON, slog.LevelDebug)
	assert.NoError(err)

	provider := logger.NewTracerProvider(log)
	tracer := provider.Tracer("test")
	_, span := tracer.Start(context.Background(), "render")
	span.SetStatus(codes.Error, "dot missing")
	span.End()
	assert.NoError(provider.Shutdown(context.Background()))

	var record map[string]any
	if assert.NoError(json.Unmarshal(buf.Bytes(), &record)) {
		assert.Equal("render", record["msg"])
		assert.Equal("ERROR", record["level"])
		assert.Equal("dot missing", record["error"])
		assert.NotEmpty(record["trace"])
	}
}
