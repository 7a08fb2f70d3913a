package datastore

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
}

// buildMySQLDSN assembles the DSN with the driver's own formatter so
// credentials containing special characters are escaped correctly.
func buildMySQLDSN(s *conf.MySQLSettings) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = s.Username
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Host, s.Port)
	cfg.DBName = s.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = s.ConnectTimeout
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	// "skip-verify" encrypts without validating the server certificate, as
	// managed cloud databases with self-signed chains require.
	cfg.TLSConfig = s.TLS
	return cfg.FormatDSN()
}

// Open sets up the MySQL connection pool. No connection is made here;
// the first query or Ping dials the server.
func (store *MySQLStore) Open() error {
	m := store.Settings.Datastore.MySQL
	mysqlLogger := store.logger.Module("mysql")

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       buildMySQLDSN(&m),
		DefaultStringSize:         255,
		SkipInitializeWithVersion: true, // avoids a round trip while the server may be down
	}), store.gormConfig())
	if err != nil {
		mysqlLogger.Error("Failed to open MySQL database",
			logger.String("host", m.Host),
			logger.String("port", m.Port),
			logger.String("database", m.Database),
			logger.Error(err))
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.ConnMaxLifetime)

	store.DB = db
	mysqlLogger.Info("MySQL connection pool configured",
		logger.String("address", net.JoinHostPort(m.Host, m.Port)),
		logger.String("database", m.Database),
		logger.String("tls", m.TLS),
		logger.Int("max_open_conns", m.MaxOpenConns))
	return nil
}
