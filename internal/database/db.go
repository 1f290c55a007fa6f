// Package database is the sqlite backend of the knowledge store, built on
// sqlx with embedded golang-migrate migrations.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/plexybot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// NewDB opens the sqlite knowledge database at dbPath and brings its schema
// up to date.
func NewDB(dbPath string, log *slog.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("connect knowledge database: %w", err)
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON;", "PRAGMA busy_timeout = 5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn("Failed to apply pragma", "pragma", pragma, "error", err)
		}
	}

	if err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath), log); err != nil {
		CloseDB(db, log)
		return nil, err
	}

	log.Info("Knowledge database ready", "path", dbPath)
	return db, nil
}

// CloseDB closes the connection pool, logging instead of returning failures.
func CloseDB(db *sqlx.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing knowledge database", "error", err)
		return
	}
	log.Info("Knowledge database closed")
}

// ApplyMigrations runs the embedded schema migrations (entities, users,
// interactions, feedback) against db.
func ApplyMigrations(db *sql.DB, dbName string, log *slog.Logger) error {
	switch {
	case db == nil:
		return errors.New("apply migrations: nil database handle")
	case dbName == "":
		return errors.New("apply migrations: empty database name")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("Schema already current", "database", dbName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("Schema migrated", "database", dbName)
	return nil
}

// ExtractDBNameFromPath strips a file: prefix and query string from a sqlite DSN.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
