// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source opens the legacy CMS database, reflects the tables the
// export reads, and evaluates declarative join queries against them.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// ErrUnsupportedURL is returned for database URLs whose scheme has no
// driver or that cannot be parsed.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Dialect identifies the SQL backend behind a database URL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Target is a database URL resolved to a database/sql driver name and DSN.
type Target struct {
	Dialect Dialect
	Driver  string
	DSN     string
}

// Resolve turns a SQLAlchemy-style URL such as "mysql://u:p@host/db",
// "postgresql+psycopg2://host/db" or "sqlite:///site.db" into a Target.
func Resolve(rawURL string) (Target, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return Target{}, fmt.Errorf("%w: %q has no scheme", ErrUnsupportedURL, rawURL)
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "sqlite", "sqlite3":
		return Target{Dialect: DialectSQLite, Driver: "sqlite3", DSN: sqlitePath(rest)}, nil
	case "postgres", "postgresql":
		u, err := url.Parse(rawURL)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
		}
		u.Scheme = "postgres"
		return Target{Dialect: DialectPostgres, Driver: "postgres", DSN: u.String()}, nil
	case "mysql", "mariadb":
		dsn, err := mysqlDSN(rawURL)
		if err != nil {
			return Target{}, err
		}
		return Target{Dialect: DialectMySQL, Driver: "mysql", DSN: dsn}, nil
	default:
		return Target{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, scheme)
	}
}

// sqlitePath follows SQLAlchemy: three slashes is a relative path, four an
// absolute one, and an empty path is an in-memory database.
func sqlitePath(rest string) string {
	path := strings.TrimPrefix(rest, "/")
	if path == "" {
		return ":memory:"
	}
	return path
}

func mysqlDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}

	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	host := u.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)

	q := u.Query()
	if sock := q.Get("unix_socket"); sock != "" {
		cfg.Net = "unix"
		cfg.Addr = sock
		q.Del("unix_socket")
	}
	for key := range q {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = q.Get(key)
	}

	return cfg.FormatDSN(), nil
}

func (t Target) dialect() schema.Dialect {
	switch t.Dialect {
	case DialectPostgres:
		return pgdialect.New()
	case DialectMySQL:
		return mysqldialect.New()
	default:
		return sqlitedialect.New()
	}
}

// Open resolves rawURL, opens the database and checks that it answers.
// The caller owns the returned handle and must Close it.
func Open(ctx context.Context, rawURL string) (*bun.DB, error) {
	t, err := Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(t.Driver, t.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", t.Dialect, err)
	}

	return bun.NewDB(sqldb, t.dialect()), nil
}
