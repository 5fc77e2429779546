package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// keys of the persisted state layout
const (
	KeyWorkers       = "atlant-workers"
	KeyWorkRecords   = "atlant-work-records"
	KeyAuthHash      = "atlant-auth-hash"
	KeyAuthStatus    = "atlant-auth-status"
	KeyAuthTimestamp = "atlant-auth-timestamp"
	KeyLastSync      = "atlant-last-sync"
)

const (
	getValueSQL    = `SELECT value FROM kv WHERE key = ?`
	setValueSQL    = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
  ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	removeValueSQL = `DELETE FROM kv WHERE key = ?`
	valueSizeSQL   = `SELECT COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0) FROM kv WHERE key = ?`
)

// Repo is a string-keyed value store on top of SQLite.
type Repo struct {
	db *sql.DB
}

func NewRepo(dbPath string) (*Repo, error) {
	// ensure directory exists
	err := os.MkdirAll(filepath.Dir(dbPath), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// open database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// verify connection with database
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repo{db: db}

	// run migrations
	if err := repo.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// applies the embedded schema migrations
func (r *Repo) runMigrations() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	defer src.Close()

	driver, err := sqlitemigrate.WithInstance(r.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	// m.Close would close r.db through the driver, so only the source is closed
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// +---------------------+
// |                     |
// |    Value Queries    |
// |                     |
// +---------------------+

// get value by key, ok is false when the key was never set
func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, getValueSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, setValueSQL, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, keys ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, removeValueSQL, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// set several values in one transaction
func (r *Repo) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, setValueSQL, key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// total stored bytes of the given keys
func (r *Repo) Size(ctx context.Context, keys ...string) (int64, error) {
	var total int64
	for _, key := range keys {
		var n int64
		if err := r.db.QueryRowContext(ctx, valueSizeSQL, key).Scan(&n); err != nil {
			return 0, fmt.Errorf("size of %s: %w", key, err)
		}
		total += n
	}
	return total, nil
}
