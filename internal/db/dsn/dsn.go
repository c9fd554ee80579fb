// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/spf13/cast"

	"github.com/lumenboard/lumenboard/internal/config"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
)

var (
	// ErrMissingDetail is returned when a required connection detail is absent.
	ErrMissingDetail = errors.New("missing connection detail")
	// ErrUnsupportedEngine is returned for engines without a DSN format.
	ErrUnsupportedEngine = errors.New("unsupported database engine")
)

// Create builds the Data Source Name of the application database.
func Create(dbCfg *config.DB) string {
	switch dbCfg.Engine {
	case "mysql":
		return mysql(dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name, dbCfg.Extras)
	case "postgres":
		return postgres(dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name, dbCfg.Extras)
	default:
		return dbCfg.Path
	}
}

// FromDetails builds a Data Source Name from the connection details of a
// user supplied database. Details are the loosely typed JSON object sent by
// the client, so ports may arrive as strings or numbers.
func FromDetails(engine string, details map[string]any) (string, error) {
	switch engine {
	case "mysql", "postgres":
	case "sqlite":
		path := cast.ToString(details["db"])
		if strings.TrimSpace(path) == "" {
			return "", fmt.Errorf("%w: db", ErrMissingDetail)
		}

		return path, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEngine, engine)
	}

	host := cast.ToString(details["host"])
	if host == "" {
		return "", fmt.Errorf("%w: host", ErrMissingDetail)
	}

	name := cast.ToString(details["dbname"])
	if name == "" {
		return "", fmt.Errorf("%w: dbname", ErrMissingDetail)
	}

	port := defaultPostgresPort
	if engine == "mysql" {
		port = defaultMySQLPort
	}

	if raw, ok := details["port"]; ok && raw != nil && raw != "" {
		p, err := cast.ToIntE(raw)
		if err != nil {
			return "", fmt.Errorf("invalid port: %w", err)
		}

		port = p
	}

	user := cast.ToString(details["user"])
	password := cast.ToString(details["password"])
	extras := cast.ToString(details["additional-options"])

	if engine == "mysql" {
		return mysql(user, password, host, port, name, extras), nil
	}

	if cast.ToBool(details["ssl"]) && !strings.Contains(extras, "sslmode") {
		extras = strings.TrimSpace(extras + " sslmode=require")
	}

	return postgres(user, password, host, port, name, extras), nil
}

// mysql formats a go-sql-driver DSN. parseTime is always on so DATETIME
// columns scan into time.Time. extras is a query string appended as is.
func mysql(user, password, host string, port int, name, extras string) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = name
	cfg.ParseTime = true

	out := cfg.FormatDSN()

	if extras = strings.TrimLeft(strings.TrimSpace(extras), "?&"); extras != "" {
		out += "&" + extras
	}

	return out
}

// postgres formats a postgres:// URL. extras are key=value pairs separated by
// spaces or '&' and become query parameters.
func postgres(user, password, host string, port int, name, extras string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + name,
	}

	switch {
	case password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}

	q := url.Values{}

	for _, pair := range strings.FieldsFunc(extras, func(r rune) bool { return r == ' ' || r == '&' }) {
		if k, v, ok := strings.Cut(pair, "="); ok && k != "" {
			q.Set(k, v)
		}
	}

	u.RawQuery = q.Encode()

	return u.String()
}
