package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Open connects to the configured database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer at a time keeps sqlite from returning SQLITE_BUSY under
		// concurrent verification runs.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA synchronous = NORMAL",
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("pragma %q: %w", p, err)
			}
		}
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables if they do not exist. The DDL is shared by
// sqlite and postgres; timestamps are stored as unix nanoseconds.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS content_items (
			id                        TEXT PRIMARY KEY,
			title                     TEXT    NOT NULL,
			body                      TEXT    NOT NULL,
			content_type              TEXT    NOT NULL,
			stage                     TEXT    NOT NULL,
			created_by                TEXT    NOT NULL DEFAULT '',
			assigned_to               TEXT    NOT NULL DEFAULT '',
			notes                     TEXT,
			published_url             TEXT,
			verification_status       TEXT,
			verification_score        INTEGER,
			verification_run          BIGINT  NOT NULL DEFAULT 0,
			verification_requested_at BIGINT,
			created_at                BIGINT  NOT NULL,
			updated_at                BIGINT  NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_content_stage_author ON content_items (stage, created_by);

		CREATE TABLE IF NOT EXISTS verification_records (
			id             TEXT PRIMARY KEY,
			content_id     TEXT    NOT NULL,
			author_id      TEXT    NOT NULL DEFAULT '',
			run            BIGINT  NOT NULL DEFAULT 0,
			verified_at    BIGINT  NOT NULL,
			checks         TEXT    NOT NULL,
			overall_passed BOOLEAN NOT NULL,
			overall_score  INTEGER NOT NULL,
			issue_reasons  TEXT    NOT NULL,
			overridden     BOOLEAN NOT NULL DEFAULT FALSE,
			overridden_by  TEXT,
			overridden_at  BIGINT
		);

		CREATE INDEX IF NOT EXISTS idx_verification_content ON verification_records (content_id, verified_at);
		CREATE INDEX IF NOT EXISTS idx_verification_author ON verification_records (author_id, verified_at);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func placeholders(driver string) sq.StatementBuilderType {
	if driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
