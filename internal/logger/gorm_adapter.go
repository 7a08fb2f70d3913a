package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// SQLModule is the sub-module gorm output is logged under, so
// logging.module_levels.datastore.sql: trace shows every statement.
const SQLModule = "sql"

// bcryptHashPattern matches password hashes that appear as bound values in
// the INSERT issued when a user is provisioned.
var bcryptHashPattern = regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`)

// GormLoggerAdapter routes gorm's statement log into the store's module
// logger. Statements go out at TRACE, slow statements and failures at WARN,
// and statements abandoned by a cancelled request at DEBUG.
type GormLoggerAdapter struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewGormLoggerAdapter scopes storeLogger to SQLModule. A zero slowThreshold
// disables slow statement warnings.
func NewGormLoggerAdapter(storeLogger Logger, slowThreshold time.Duration) *GormLoggerAdapter {
	if storeLogger == nil {
		storeLogger = NewDiscardLogger()
	}
	return &GormLoggerAdapter{
		logger:        storeLogger.Module(SQLModule),
		slowThreshold: slowThreshold,
	}
}

// LogMode is a no-op; levels come from logging.module_levels.
func (a *GormLoggerAdapter) LogMode(_ gorm_logger.LogLevel) gorm_logger.Interface {
	return a
}

// Info carries migrator chatter, logged at DEBUG.
func (a *GormLoggerAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Debug(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.logger.WithContext(ctx).Error(RedactSensitiveData(fmt.Sprintf(msg, data...)))
}

// Trace logs one executed statement.
func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	log := a.logger.WithContext(ctx)
	fields := []Field{
		String("sql", redactStatement(sql)),
		Int64("rows_affected", rows),
		Int64("duration_ms", elapsed.Milliseconds()),
	}

	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		if a.slowThreshold > 0 && elapsed > a.slowThreshold {
			log.Warn("slow sql statement", append(fields, Duration("threshold", a.slowThreshold))...)
			return
		}
		log.Trace("sql statement", fields...)

	case errors.Is(err, context.Canceled):
		log.Debug("sql statement cancelled", fields...)

	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("sql statement timed out", fields...)

	default:
		log.Warn("sql statement failed", append(fields, Error(err))...)
	}
}

func redactStatement(sql string) string {
	return bcryptHashPattern.ReplaceAllString(RedactSensitiveData(sql), "[REDACTED]")
}
