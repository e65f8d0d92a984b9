// Package db is the persistence gateway for participants and winners.
//
// Production runs against a remote Turso (libSQL) database over HTTP; local
// development and tests use an embedded SQLite file or memory database. Both
// speak the same SQL dialect, so every query below serves either backend.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"sorteo-ig/internal/db/migrations"
)

// Store wraps the SQL handle shared by all gateway operations.
type Store struct {
	DB *sql.DB
}

// Open connects to a remote libSQL database and applies pending migrations.
func Open(dbURL, authToken string) (*Store, error) {
	if strings.TrimSpace(dbURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	connector, err := libsql.NewConnector(dbURL, libsql.WithAuthToken(authToken))
	if err != nil {
		return nil, fmt.Errorf("libsql connector: %w", err)
	}
	return initStore(sql.OpenDB(connector))
}

// OpenSQLite opens an embedded SQLite database at path (":memory:" allowed)
// and applies pending migrations.
func OpenSQLite(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A memory database lives in a single connection.
	sqlDB.SetMaxOpenConns(1)
	return initStore(sqlDB)
}

func initStore(sqlDB *sql.DB) (*Store, error) {
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{DB: sqlDB}, nil
}

// Close closes the SQL handle.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
