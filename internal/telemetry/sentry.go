// Package telemetry provides privacy-compliant, opt-in error tracking backed
// by Sentry. Nothing is sent unless sentry.enabled is set and a DSN is given.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

var (
	initMu      sync.Mutex
	initialized bool
)

// Option customizes the Sentry client options before initialization.
type Option func(*sentry.ClientOptions)

// WithTransport replaces the HTTP transport, used by tests to capture events.
func WithTransport(t sentry.Transport) Option {
	return func(o *sentry.ClientOptions) {
		o.Transport = t
	}
}

// InitSentry initializes the Sentry SDK and registers it as the error
// reporter for the errors package. It is a no-op when telemetry is disabled.
func InitSentry(settings *conf.Settings, log logger.Logger, opts ...Option) error {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	log = log.Module("telemetry")

	if !settings.Sentry.Enabled {
		log.Info("Sentry telemetry is disabled (opt-in required)")
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	options := sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       settings.Sentry.SampleRate,
		Environment:      settings.Sentry.Environment,
		AttachStacktrace: false,
		ServerName:       "", // prevent hostname leakage
		Release:          fmt.Sprintf("cropsevai-hub@%s", settings.Version),
		BeforeSend:       beforeSend,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := sentry.Init(options); err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized = true

	log.Info("Sentry telemetry initialized",
		logger.String("environment", settings.Sentry.Environment),
		logger.Float64("sample_rate", settings.Sentry.SampleRate))
	return nil
}

// beforeSend strips identifying data from every outgoing event.
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	event.Message = errors.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = errors.ScrubMessage(event.Exception[i].Value)
	}

	return event
}

// IsInitialized reports whether InitSentry enabled telemetry.
func IsInitialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}

// Flush waits up to timeout for queued events to be delivered. It is called
// during shutdown.
func Flush(timeout time.Duration) bool {
	if !IsInitialized() {
		return true
	}
	return sentry.Flush(timeout)
}

// Shutdown detaches the reporter and flushes pending events.
func Shutdown(timeout time.Duration) {
	if !IsInitialized() {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(timeout)

	initMu.Lock()
	initialized = false
	initMu.Unlock()
}
