package datastore

import (
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
)

func TestBuildMySQLDSN(t *testing.T) {
	s := &conf.MySQLSettings{
		Host:           "db.example.com",
		Port:           "3306",
		Username:       "agro",
		Password:       "p@ss:word/1",
		Database:       "cropsevaihub",
		TLS:            "skip-verify",
		ConnectTimeout: 10 * time.Second,
	}

	dsn := buildMySQLDSN(s)

	parsed, err := mysqldriver.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "agro", parsed.User)
	assert.Equal(t, "p@ss:word/1", parsed.Passwd)
	assert.Equal(t, "db.example.com:3306", parsed.Addr)
	assert.Equal(t, "cropsevaihub", parsed.DBName)
	assert.Equal(t, "skip-verify", parsed.TLSConfig)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 10*time.Second, parsed.Timeout)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, isDuplicateKey(&mysqldriver.MySQLError{Number: 1045}))
	assert.True(t, isDuplicateKey(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, isDuplicateKey(errors.NewStd("connection refused")))
}
