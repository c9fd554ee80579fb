// Package daemon wires the application database, session storage, activity
// log and web service together.
package daemon

import (
	"fmt"
	"strings"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumenboard/lumenboard/internal/activity"
	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/db/dsn"
	"github.com/lumenboard/lumenboard/internal/db/engine"
	"github.com/lumenboard/lumenboard/internal/db/models"
	"github.com/lumenboard/lumenboard/internal/password"
	"github.com/lumenboard/lumenboard/internal/setup"
	"github.com/lumenboard/lumenboard/internal/web"
	"github.com/lumenboard/lumenboard/internal/web/handler"
	"github.com/lumenboard/lumenboard/internal/web/session"
)

const defaultSessionTable = "fiber_sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	events     *activity.Publisher
	storage    fiber.Storage
}

// Start serves HTTP until a shutdown signal arrives, then releases resources.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	d.Close()

	return err
}

// Close stops the activity log and closes storage and database.
func (d *Daemon) Close() {
	d.events.Close()

	if d.storage != nil {
		if err := d.storage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session storage")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Open connects and migrates the application database and seeds it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Discard}
	if cfg.DevMode {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := engine.Open(&cfg.DB, gormCfg)
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err = seed(db); err != nil {
		return nil, err
	}

	return db, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	storage, err := newSessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(storage)

	policy, err := password.NewPolicy(cfg.Password.Complexity, cfg.Password.Length)
	if err != nil {
		return nil, err
	}

	events := activity.NewPublisher(db, cfg.Activity.BufferSize)
	sessions := session.NewManager(db, cfg.Webserver.Session.ExpiryTime)

	webService, err := web.New(&handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Sessions: sessions,
		Setup:    setup.NewService(db, policy, sessions, engine.NewTester(), events),
		Policy:   policy,
	})
	if err != nil {
		events.Close()

		return nil, err
	}

	if token, err := setup.EnsureToken(db); err != nil {
		log.Error().Err(err).Msg("failed to prepare setup token")
	} else if token != "" {
		log.Info().Str("url", strings.TrimRight(cfg.Webserver.URL, "/")+"/setup").
			Msg("no user exists yet, finish the setup in the browser")
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		webService: webService,
		events:     events,
		storage:    storage,
	}, nil
}

// newSessionStorage selects the fiber storage caching session data.
// A nil storage makes the session store fall back to memory.
func newSessionStorage(cfg *config.Config) (fiber.Storage, error) { //nolint:nilnil
	table := cfg.Sessions.Table
	if table == "" {
		table = defaultSessionTable
	}

	switch cfg.Sessions.Backend {
	case "redis":
		storage, err := session.NewRedisStorage(cfg.Sessions.RedisURL)
		if err != nil {
			return nil, err
		}

		return storage, nil
	case "db":
		switch cfg.DB.Engine {
		case engine.MySQL:
			return sessionmysql.New(sessionmysql.Config{
				ConnectionURI: dsn.Create(&cfg.DB),
				Table:         table,
			}), nil
		case engine.Postgres:
			return sessionpostgres.New(sessionpostgres.Config{
				ConnectionURI: dsn.Create(&cfg.DB),
				Table:         table,
			}), nil
		default:
			log.Warn().Str("engine", cfg.DB.Engine).
				Msg("no session storage for this engine, sessions are cached in memory")

			return nil, nil
		}
	default:
		return nil, nil
	}
}
