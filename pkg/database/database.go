package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	logx "github.com/erpbot/server/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes the ERP database connection. ERPNext sites run on
// MariaDB, hence the mysql default.
type Config struct {
	Driver          string `split_words:"true" default:"mysql"`
	DSN             string `envconfig:"DATABASE_DSN" required:"true"`
	MaxOpenConns    int    `split_words:"true" default:"10"`
	MaxIdleConns    int    `split_words:"true" default:"5"`
	ConnMaxLifetime int    `split_words:"true" default:"30"` // minutes
	LogLevel        string `split_words:"true" default:"warn"`
	AutoMigrate     bool   `split_words:"true" default:"false"`
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch strings.ToLower(c.Driver) {
	case DriverMySQL, "mariadb":
		return mysql.Open(c.DSN), nil
	case DriverPostgres, "postgresql":
		return postgres.Open(c.DSN), nil
	case DriverSQLite, "sqlite3":
		return sqlite.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func (c *Config) inMemory() bool {
	d := strings.ToLower(c.Driver)
	return (d == DriverSQLite || d == "sqlite3") && strings.Contains(c.DSN, ":memory:")
}

func parseLogLevel(s string) gormlogger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Open connects to the database, applies pool settings and pings it.
func (c *Config) Open(ctx context.Context) (*gorm.DB, error) {
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logx.NewGormLogger(parseLogLevel(c.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	// every connection to :memory: gets its own empty database
	if c.inMemory() {
		sqlDB.SetMaxOpenConns(1)
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 && !c.inMemory() {
		sqlDB.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetime) * time.Minute)
	}

	if err := Ping(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// Ping checks that the connection behind db is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
