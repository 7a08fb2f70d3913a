// Package datastore provides error handling helpers for database operations
package datastore

import (
	"context"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// Sentinel errors returned by the store. Callers match them with errors.Is;
// store failures wrap an EnhancedError carrying the operation name.
var (
	ErrCropNotFound     = errors.NewStd("crop not found")
	ErrDiseaseNotFound  = errors.NewStd("disease not found")
	ErrUserNotFound     = errors.NewStd("user not found")
	ErrDuplicateKey     = errors.NewStd("duplicate key")
	ErrQueryTimeout     = errors.NewStd("database query timed out")
	ErrQueryCanceled    = errors.NewStd("database query cancelled by caller")
	ErrStoreUnavailable = errors.NewStd("database unavailable")
)

// mysqlDuplicateEntry is the MySQL server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// dbError creates a properly categorized database error with context
func dbError(err error, operation string, category errors.ErrorCategory, kv ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(category).
		Context("operation", operation)

	for i := 0; i < len(kv)-1; i += 2 {
		if key, ok := kv[i].(string); ok {
			builder = builder.Context(key, kv[i+1])
		}
	}

	return builder.Build()
}

// isDuplicateKey reports whether err is a unique constraint violation from
// either supported driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

// isCanceled reports whether the caller gave up on the query, for example
// because the HTTP client disconnected.
func isCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

// isTimeout reports whether err or the query context signals an expired deadline.
func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// mapError translates a driver or gorm error into one of the store sentinels.
// notFound is returned for gorm.ErrRecordNotFound; pass nil when the
// operation cannot miss. The raw driver text is logged here and never
// returned in a form that reaches clients.
func (ds *DataStore) mapError(ctx context.Context, operation string, err error, notFound error) error {
	if err == nil {
		ds.recorder.RecordOperation(operation, metrics.StatusSuccess)
		return nil
	}

	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		ds.recorder.RecordOperation(operation, metrics.StatusNotFound)
		return notFound
	}

	ds.recorder.RecordOperation(operation, metrics.StatusError)
	log := ds.logger.WithContext(ctx)

	switch {
	case isDuplicateKey(err):
		ds.recorder.RecordError(operation, "duplicate")
		log.Debug("Unique constraint violated", logger.String("operation", operation))
		return errors.Join(ErrDuplicateKey, dbError(err, operation, errors.CategoryConflict))

	case isCanceled(ctx, err):
		ds.recorder.RecordError(operation, "cancelled")
		log.Debug("Database query cancelled", logger.String("operation", operation))
		return errors.Join(ErrQueryCanceled, context.Canceled,
			dbError(err, operation, errors.CategoryGeneric))

	case isTimeout(ctx, err):
		ds.recorder.RecordError(operation, "timeout")
		log.Warn("Database query timed out",
			logger.String("operation", operation),
			logger.Duration("timeout", ds.queryTimeout))
		return errors.Join(ErrQueryTimeout, dbError(err, operation, errors.CategoryTimeout,
			"timeout", ds.queryTimeout.String()))

	default:
		ds.recorder.RecordError(operation, "unavailable")
		log.Error("Database query failed",
			logger.String("operation", operation),
			logger.Error(err))
		return errors.Join(ErrStoreUnavailable, dbError(err, operation, errors.CategoryDatabase))
	}
}
