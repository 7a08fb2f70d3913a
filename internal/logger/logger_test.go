package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T, level LogLevel) (Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapTraceLevel)
	return NewZapLogger(core, level), logs
}

func TestLevelThreshold(t *testing.T) {
	log, logs := newObservedLogger(t, LogLevelInfo)

	log.Trace("trace")
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "info", logs.All()[0].Message)
	assert.Equal(t, "error", logs.All()[2].Message)
}

func TestModuleScoping(t *testing.T) {
	log, logs := newObservedLogger(t, LogLevelDebug)

	log.Module("api").Module("http").Info("request", String("method", "GET"), Int("status", 200))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "api.http", fields["module"])
	assert.Equal(t, "GET", fields["method"])
	assert.EqualValues(t, 200, fields["status"])
}

func TestModuleLevelOverrides(t *testing.T) {
	core, logs := observer.New(zapTraceLevel)
	l := NewZapLogger(core, LogLevelWarn).(*zapLogger)
	l.cfg.ModuleLevels = map[string]string{"datastore": "trace"}

	l.Module("datastore").Trace("sql query")
	l.Module("datastore").Module("mysql").Debug("inherited")
	l.Module("auth").Info("dropped")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapTraceLevel, logs.All()[0].Level)
	assert.Equal(t, "datastore.mysql", logs.All()[1].ContextMap()["module"])
}

func TestWithContextAddsRequestID(t *testing.T) {
	log, logs := newObservedLogger(t, LogLevelInfo)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	log.WithContext(ctx).Info("handled")
	log.WithContext(context.Background()).Info("no id")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
	assert.NotContains(t, logs.All()[1].ContextMap(), "request_id")
}

func TestWithKeepsFieldsAcrossModules(t *testing.T) {
	log, logs := newObservedLogger(t, LogLevelInfo)

	log.With(String("component", "serve")).Module("api").Info("started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "serve", fields["component"])
	assert.Equal(t, "api", fields["module"])
}

func TestErrorField(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: nil}, Error(nil))
	assert.Equal(t, "invalid argument", Error(os.ErrInvalid).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelTrace, ParseLevel("trace"))
	assert.Equal(t, LogLevelInfo, ParseLevel("loud"))
}

func TestCentralLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cfg := DefaultLoggingConfig()
	cfg.Console.Enabled = false
	cfg.FileOutput.Enabled = true
	cfg.FileOutput.Path = path

	central, err := NewCentralLogger(cfg)
	require.NoError(t, err)

	central.Module("serve").Info("listening", String("address", ":5000"))
	require.NoError(t, central.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "listening", entry["msg"])
	assert.Equal(t, "serve", entry["module"])
	assert.Equal(t, ":5000", entry["address"])
}

func TestRotatingFileCoreRequiresPath(t *testing.T) {
	_, _, err := CreateRotatingFileCore(FileOutput{}, nil, nil)
	assert.Error(t, err)
}

func TestRedactSensitiveData(t *testing.T) {
	got := RedactSensitiveData("Authorization: Bearer abc.def.ghi password=hunter2")
	assert.NotContains(t, got, "abc.def.ghi")
	assert.NotContains(t, got, "hunter2")

	fields := RedactSensitiveFields([]Field{String("password", "x"), String("email", "a@b.c")})
	assert.Equal(t, "[REDACTED]", fields[0].Value)
	assert.Equal(t, "a@b.c", fields[1].Value)
}
