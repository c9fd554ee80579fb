// Package engine knows the database engines Lumenboard can talk to, both for
// its own application database and for user supplied connections.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/db/dsn"
)

const (
	// Postgres is the PostgreSQL engine name.
	Postgres = "postgres"
	// MySQL is the MySQL / MariaDB engine name.
	MySQL = "mysql"
	// SQLite is the embedded SQLite engine name.
	SQLite = "sqlite"

	// DefaultTestTimeout bounds a single connection test.
	DefaultTestTimeout = 10 * time.Second

	memoryPath = ":memory:"
)

var (
	// ErrUnknownEngine is returned for engine names that are not registered.
	ErrUnknownEngine = errors.New("unknown database engine")
	// ErrSQLiteFileNotFound is returned when a sqlite connection points at a missing file.
	ErrSQLiteFileNotFound = errors.New("sqlite database file does not exist")
)

// Names returns the registered engine names in a stable order.
func Names() []string {
	return []string{MySQL, Postgres, SQLite}
}

// IsValid reports whether name is a registered engine.
func IsValid(name string) bool {
	return slices.Contains(Names(), name)
}

// IsProductionReady reports whether the engine is fit to hold the application database.
func IsProductionReady(name string) bool {
	return name != SQLite
}

// Dialector returns the gorm dialector for engine and dataSource.
func Dialector(name, dataSource string) (gorm.Dialector, error) {
	switch name {
	case MySQL:
		return mysql.Open(dataSource), nil
	case Postgres:
		return postgres.Open(dataSource), nil
	case SQLite:
		return sqlite.Open(dataSource), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Open connects to the application database described by cfg.
func Open(cfg *config.DB, gormCfg *gorm.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Engine, dsn.Create(cfg))
	if err != nil {
		return nil, err
	}

	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.Engine == SQLite {
		// sqlite serialises writers, a single connection avoids SQLITE_BUSY
		// and keeps ":memory:" databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Tester checks that a user supplied connection can be established.
type Tester interface {
	Test(ctx context.Context, engine string, details map[string]any) error
}

// GormTester tests connections by opening a gorm session and pinging it.
type GormTester struct {
	Timeout time.Duration
}

// NewTester returns a GormTester using DefaultTestTimeout.
func NewTester() *GormTester {
	return &GormTester{Timeout: DefaultTestTimeout}
}

// Test opens, pings and closes a connection. Nothing is written.
func (t *GormTester) Test(ctx context.Context, engine string, details map[string]any) error {
	if !IsValid(engine) {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}

	dataSource, err := dsn.FromDetails(engine, details)
	if err != nil {
		return err
	}

	if engine == SQLite && dataSource != memoryPath && !strings.HasPrefix(dataSource, "file:") {
		if _, err = os.Stat(dataSource); err != nil {
			return fmt.Errorf("%w: %s", ErrSQLiteFileNotFound, dataSource)
		}
	}

	dialector, err := Dialector(engine, dataSource)
	if err != nil {
		return err
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	defer func() { _ = sqlDB.Close() }()

	if err = sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	return nil
}
