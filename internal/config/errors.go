package config

import (
	"errors"
)

var (
	// ErrNilConfig is returned when a nil config is passed.
	ErrNilConfig = errors.New("config must not be nil")

	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownDBEngine error if config db.engine is not one of sqlite, mysql or postgres.
	ErrUnknownDBEngine = errors.New("config db.engine must be one of sqlite, mysql, postgres")

	// ErrUnknownSessionBackend error if config sessions.backend is not supported.
	ErrUnknownSessionBackend = errors.New("config sessions.backend must be one of memory, db, redis")

	// ErrUnknownPasswordComplexity error if config password.complexity is not supported.
	ErrUnknownPasswordComplexity = errors.New("config password.complexity must be one of weak, normal, strong")
)
