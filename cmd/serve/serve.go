// Package serve implements the serve command that runs the HTTP server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/cropsevai/cropsevai-hub/internal/api"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
	"github.com/cropsevai/cropsevai-hub/internal/runtime"
	"github.com/cropsevai/cropsevai-hub/internal/telemetry"
)

const (
	startupPingTimeout = 5 * time.Second
	telemetryFlushWait = 2 * time.Second
)

// Command creates the serve command.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start the CropSevai Hub REST API. The server starts even when the database is unreachable and reports the database state on /health.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Run(ctx, rt)
		},
	}

	if err := setupFlags(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides webserver.port and PORT)")
	if err := viper.BindPFlag("webserver.port", cmd.Flags().Lookup("port")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// Run starts the server and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, rt *runtime.Context) error {
	settings := rt.Settings
	log := rt.Logger.Module("main")

	var m *observability.Metrics
	if settings.Metrics.Enabled {
		var err error
		if m, err = observability.NewMetrics(); err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	if err := telemetry.InitSentry(settings, rt.Logger); err != nil {
		log.Warn("Sentry initialization failed, continuing without telemetry", logger.Error(err))
	}
	defer telemetry.Flush(telemetryFlushWait)

	var dsMetrics *metrics.DatastoreMetrics
	if m != nil {
		dsMetrics = m.Datastore
	}
	ds, err := rt.OpenDatastore(dsMetrics)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn("Failed to close datastore", logger.Error(err))
		}
	}()

	prepareDatastore(ctx, rt, ds, log)

	opts := []api.ServerOption{
		api.WithLogger(rt.Logger),
		api.WithDataStore(ds),
	}
	if m != nil {
		opts = append(opts, api.WithMetrics(m))
	}
	server, err := api.New(settings, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		// The parent context is already cancelled; give shutdown its own.
		return server.Shutdown(context.WithoutCancel(gctx))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// prepareDatastore pings the database once at startup. An unreachable
// database is logged with its connection parameters and does not stop the
// server; a reachable one is migrated when datastore.automigrate is set.
func prepareDatastore(ctx context.Context, rt *runtime.Context, ds datastore.Interface, log logger.Logger) {
	settings := rt.Settings
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()

	if err := ds.Ping(pingCtx); err != nil {
		fields := []logger.Field{logger.Error(err)}
		for k, v := range settings.DatabaseEnvReport() {
			fields = append(fields, logger.String("db_"+k, v))
		}
		log.Warn("Database is not reachable, serving with database unavailable", fields...)
		return
	}
	log.Info("Database connection verified", logger.String("driver", settings.Datastore.Driver))

	if !settings.Datastore.AutoMigrate {
		return
	}
	if err := ds.Migrate(ctx); err != nil {
		log.Error("Automatic migration failed", logger.Error(err))
	}
}
