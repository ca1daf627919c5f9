package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestConfig_OpenSQLite(t *testing.T) {
	cfg := &Config{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}
	db, err := cfg.Open(context.Background())
	require.NoError(t, err)
	defer Close(db)

	assert.NoError(t, Ping(context.Background(), db))
}

func TestConfig_UnsupportedDriver(t *testing.T) {
	cfg := &Config{Driver: "oracle", DSN: "x"}
	_, err := cfg.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestPing_Failure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	err = Ping(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, parseLogLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, parseLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, parseLogLevel(""))
}

func TestConfig_InMemorySingleConnection(t *testing.T) {
	cfg := &Config{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 10, LogLevel: "silent"}
	db, err := cfg.Open(context.Background())
	require.NoError(t, err)
	defer Close(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
