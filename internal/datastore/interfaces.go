// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// Interface abstracts the underlying database implementation and defines
// the operations the HTTP layer and the CLI need.
type Interface interface {
	Open() error
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) error

	// crops
	ListCrops(ctx context.Context) ([]Crop, error)
	GetCrop(ctx context.Context, id uint) (*Crop, error)

	// diseases and treatments
	ListDiseases(ctx context.Context) ([]Disease, error)
	ListDiseasesByCrop(ctx context.Context, cropID uint) ([]Disease, error)
	GetDiseaseWithCrop(ctx context.Context, id uint) (*DiseaseWithCrop, error)
	ListSolutionsByDisease(ctx context.Context, diseaseID uint) ([]Solution, error)

	// fertilizers and advisory
	ListFertilizers(ctx context.Context) ([]Fertilizer, error)
	ListFertilizersByCrop(ctx context.Context, cropID uint) ([]Fertilizer, error)
	ListAdvisoryByCrop(ctx context.Context, cropID uint) ([]Advisory, error)

	// users
	ListUsers(ctx context.Context) ([]User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error

	// dashboard
	CountCrops(ctx context.Context) (int64, error)
	CountDiseases(ctx context.Context) (int64, error)
	CropDiseaseCounts(ctx context.Context) ([]CropDiseaseCount, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
}

// DataStore implements Interface using a GORM database. Driver specific
// stores embed it and provide Open.
type DataStore struct {
	DB       *gorm.DB // GORM database instance, nil until Open succeeds
	Settings *conf.Settings

	logger       logger.Logger
	recorder     metrics.Recorder
	poolMetrics  *metrics.DatastoreMetrics
	queryTimeout time.Duration
}

// New creates the store selected by datastore.driver. The returned store
// is not connected; call Open. m may be nil when metrics are disabled.
func New(settings *conf.Settings, log logger.Logger, m *metrics.DatastoreMetrics) (Interface, error) {
	base := newDataStore(settings, log)
	base.SetMetrics(m)

	switch settings.Datastore.Driver {
	case conf.DriverSQLite:
		return &SQLiteStore{DataStore: base}, nil
	case conf.DriverMySQL, "":
		return &MySQLStore{DataStore: base}, nil
	default:
		return nil, fmt.Errorf("unsupported datastore driver %q", settings.Datastore.Driver)
	}
}

func newDataStore(settings *conf.Settings, log logger.Logger) DataStore {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	timeout := settings.Datastore.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return DataStore{
		Settings:     settings,
		logger:       log.Module("datastore"),
		recorder:     metrics.NopRecorder{},
		queryTimeout: timeout,
	}
}

// SetMetrics attaches Prometheus collectors. Passing nil disables recording.
func (ds *DataStore) SetMetrics(m *metrics.DatastoreMetrics) {
	if m == nil {
		ds.recorder = metrics.NopRecorder{}
		ds.poolMetrics = nil
		return
	}
	ds.recorder = m
	ds.poolMetrics = m
}

// gormConfig returns the gorm configuration shared by both drivers. The
// automatic ping is disabled so the process can start while the database
// is down; serve pings explicitly and reports the result.
func (ds *DataStore) gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:               logger.NewGormLoggerAdapter(ds.logger, ds.Settings.Datastore.SlowQueryThreshold),
		DisableAutomaticPing: true,
	}
}

// run executes fn on a session bound to a per-query deadline, records
// metrics and maps the resulting error.
func (ds *DataStore) run(ctx context.Context, operation string, notFound error, fn func(db *gorm.DB) error) error {
	if ds.DB == nil {
		ds.recorder.RecordOperation(operation, metrics.StatusError)
		ds.recorder.RecordError(operation, "unavailable")
		return fmt.Errorf("%w: connection not initialized", ErrStoreUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, ds.queryTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ds.DB.WithContext(ctx))
	ds.recorder.RecordDuration(operation, time.Since(start).Seconds())

	return ds.mapError(ctx, operation, err, notFound)
}

// Close closes the underlying connection pool.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		ds.logger.Error("Failed to close database", logger.Error(err))
		return err
	}

	ds.logger.Debug("Database connection closed")
	return nil
}

// Ping checks that the database answers within the query timeout. It is
// polled by the health endpoint, so failures are returned without logging
// or telemetry.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return fmt.Errorf("%w: connection not initialized", ErrStoreUnavailable)
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, ds.queryTimeout)
	defer cancel()

	err = sqlDB.PingContext(ctx)
	if ds.poolMetrics != nil {
		ds.poolMetrics.UpdatePoolStats(sqlDB.Stats())
		ds.poolMetrics.SetDatabaseUp(err == nil)
	}

	switch {
	case err == nil:
		return nil
	case isCanceled(ctx, err):
		return fmt.Errorf("%w: %w", ErrQueryCanceled, err)
	case isTimeout(ctx, err):
		return fmt.Errorf("%w: %w", ErrQueryTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// nonNil keeps list responses serializing as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
