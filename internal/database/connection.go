package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/monarchbot/internal/config"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the configured database and makes sure the schema exists.
// The returned handle is meant to live for the whole process.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		db, err := sqlx.Connect(DriverPostgres, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := InitSchema(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case DriverSQLite, "":
		path := cfg.URL
		if path == "" {
			// Create data directory if it doesn't exist
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			path = filepath.Join(cfg.DataDir, "monarch.db")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// OpenSQLite opens (and creates if missing) the SQLite database at path.
// ":memory:" is accepted for tests.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
