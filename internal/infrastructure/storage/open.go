package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       INTEGER PRIMARY KEY,
		username      TEXT,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT,
		created_at    TIMESTAMP NOT NULL,
		last_activity TIMESTAMP NOT NULL,
		search_count  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS search_queries (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users (user_id),
		query_text   TEXT NOT NULL,
		query_type   TEXT NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_results (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id   INTEGER NOT NULL REFERENCES search_queries (id),
		source     TEXT NOT NULL,
		title      TEXT NOT NULL,
		summary    TEXT NOT NULL,
		url        TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGINT PRIMARY KEY,
		username      TEXT,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT,
		created_at    TIMESTAMPTZ NOT NULL,
		last_activity TIMESTAMPTZ NOT NULL,
		search_count  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS search_queries (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users (user_id),
		query_text   TEXT NOT NULL,
		query_type   TEXT NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_results (
		id         BIGSERIAL PRIMARY KEY,
		query_id   BIGINT NOT NULL REFERENCES search_queries (id),
		source     TEXT NOT NULL,
		title      TEXT NOT NULL,
		summary    TEXT NOT NULL,
		url        TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_activity ON users (last_activity)`,
	`CREATE INDEX IF NOT EXISTS idx_queries_user_date ON search_queries (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_queries_type ON search_queries (query_type)`,
	`CREATE INDEX IF NOT EXISTS idx_results_query ON search_results (query_id)`,
}

// Open connects to the configured database, creates missing tables and returns a repository.
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	var (
		db          *sql.DB
		err         error
		schema      []string
		placeholder sq.PlaceholderFormat
	)

	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// sqlite serializes writers; one connection also keeps :memory: databases alive
			db.SetMaxOpenConns(1)
		}
		schema, placeholder = sqliteSchema, sq.Question
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		schema, placeholder = postgresSchema, sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := migrate(ctx, db, append(append([]string(nil), schema...), indexes...)); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewRepository(db, placeholder), nil
}

func migrate(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}
