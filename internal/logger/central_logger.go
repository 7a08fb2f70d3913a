package logger

import (
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapTraceLevel sits below zap's DebugLevel; zap has no native trace level.
const zapTraceLevel = zapcore.DebugLevel - 1

func toZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelTrace:
		return zapTraceLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// encodeLevel is zapcore.CapitalLevelEncoder with a TRACE name.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapTraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

func createEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = encodeLevel
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// CentralLogger owns the zap cores and the rotating file writer. Module
// loggers derived from it share those outputs.
type CentralLogger struct {
	root    *zapLogger
	closers []io.Closer
}

// NewCentralLogger builds the console and file outputs described by cfg.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		cfg = DefaultLoggingConfig()
	}

	encoderConfig := createEncoderConfig()
	var (
		cores   []zapcore.Core
		closers []io.Closer
	)

	// Cores accept everything down to trace; per-module thresholds filter
	// before fields are converted.
	allLevels := zap.NewAtomicLevelAt(zapTraceLevel)

	if cfg.Console.Enabled {
		var encoder zapcore.Encoder
		if cfg.Console.JSON {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), allLevels))
	}

	if cfg.FileOutput.Enabled {
		core, closer, err := CreateRotatingFileCore(cfg.FileOutput, zapcore.NewJSONEncoder(encoderConfig), allLevels)
		if err != nil {
			return nil, err
		}
		cores = append(cores, core)
		closers = append(closers, closer)
	}

	var core zapcore.Core
	switch len(cores) {
	case 0:
		core = zapcore.NewNopCore()
	case 1:
		core = cores[0]
	default:
		core = zapcore.NewTee(cores...)
	}

	return &CentralLogger{
		root:    newZapLogger(zap.New(core), cfg, ""),
		closers: closers,
	}, nil
}

// Module returns a logger scoped to the given module name.
func (c *CentralLogger) Module(name string) Logger {
	return c.root.Module(name)
}

// Logger returns the unscoped root logger.
func (c *CentralLogger) Logger() Logger {
	return c.root
}

// Flush syncs all outputs.
func (c *CentralLogger) Flush() error {
	return c.root.Flush()
}

// Close flushes and releases file handles.
func (c *CentralLogger) Close() error {
	var errs []error
	if err := c.root.Flush(); err != nil {
		errs = append(errs, err)
	}
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// zapLogger implements Logger on top of a *zap.Logger.
type zapLogger struct {
	base      *zap.Logger // accumulated With fields, no module field
	zap       *zap.Logger // base plus the module field
	cfg       *LoggingConfig
	module    string
	threshold LogLevel
}

func newZapLogger(z *zap.Logger, cfg *LoggingConfig, module string) *zapLogger {
	l := &zapLogger{
		base:      z,
		zap:       z,
		cfg:       cfg,
		module:    module,
		threshold: cfg.levelFor(module),
	}
	if module != "" {
		l.zap = z.With(zap.String("module", module))
	}
	return l
}

// NewZapLogger wraps an existing zap core, mainly for tests that read
// entries back through zaptest/observer.
func NewZapLogger(core zapcore.Core, level LogLevel) Logger {
	cfg := DefaultLoggingConfig()
	cfg.DefaultLevel = string(level)
	return newZapLogger(zap.New(core), cfg, "")
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() Logger {
	return newZapLogger(zap.NewNop(), DefaultLoggingConfig(), "")
}

func (l *zapLogger) Module(name string) Logger {
	full := name
	if l.module != "" {
		full = l.module + "." + name
	}
	return newZapLogger(l.base, l.cfg, full)
}

func (l *zapLogger) Trace(msg string, fields ...Field) { l.Log(LogLevelTrace, msg, fields...) }
func (l *zapLogger) Debug(msg string, fields ...Field) { l.Log(LogLevelDebug, msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.Log(LogLevelInfo, msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.Log(LogLevelWarn, msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.Log(LogLevelError, msg, fields...) }

func (l *zapLogger) Log(level LogLevel, msg string, fields ...Field) {
	if levelRank(level) < levelRank(l.threshold) {
		return
	}
	if ce := l.zap.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func (l *zapLogger) With(fields ...Field) Logger {
	zf := toZapFields(fields)
	return &zapLogger{
		base:      l.base.With(zf...),
		zap:       l.zap.With(zf...),
		cfg:       l.cfg,
		module:    l.module,
		threshold: l.threshold,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With(String("request_id", id))
	}
	return l
}

func (l *zapLogger) Flush() error {
	err := l.zap.Sync()
	// Syncing a terminal or pipe fails on some platforms; that is not a lost log.
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return nil
	}
	return err
}

func toZapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
