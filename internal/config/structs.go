package config

import (
	"time"

	"github.com/lumenboard/lumenboard/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
	CookieName string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Password  Password
	Sessions  Sessions
	Activity  Activity
}

// DB holds the application database settings.
type DB struct {
	Engine   string // sqlite, mysql or postgres
	Path     string // sqlite file, ":memory:" allowed
	Extras   string // driver parameters, e.g. "charset=utf8mb4" or "sslmode=disable"
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Password describes the password strength policy for local accounts.
type Password struct {
	Complexity string // weak, normal or strong
	Length     int    // overrides the complexity minimum length when > 0
}

// Sessions selects where session data is cached.
type Sessions struct {
	Backend  string // memory, db or redis
	Table    string
	RedisURL string
}

// Activity configures the asynchronous activity log.
type Activity struct {
	BufferSize int
}
