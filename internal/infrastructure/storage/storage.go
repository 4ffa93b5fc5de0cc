// Package storage persists finPal data in SQLite (default) or PostgreSQL.
//
// Queries are written with ? placeholders and rebound to $n for postgres.
// The schema is managed by goose using the SQL files embedded from
// migrations/.
//
// Example usage:
//
//	store, err := storage.Open(ctx, cfg.Storage, logger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//	groups, err := store.ListGroups(ctx)
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/finpal-backend/internal/infrastructure/config"
)

// Storage provides database access. It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// Open connects using the configured driver and runs pending migrations
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	s, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Connect opens the database without touching the schema
func Connect(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.DSN)
	case config.DriverSQLite, "":
		db, err = sql.Open("sqlite3", sqliteDSN(cfg.DatabasePath))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}
	return &Storage{db: db, driver: driver, logger: logger}, nil
}

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	return Open(context.Background(), config.StorageConfig{Driver: config.DriverSQLite, DatabasePath: dbPath}, nil)
}

// sqliteDSN enables foreign keys on every pooled connection and takes the
// write lock when a transaction begins
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for tooling
func (s *Storage) DB() *sql.DB {
	return s.db
}

// q adapts a query to the driver's placeholder style
func (s *Storage) q(query string) string {
	if s.driver == config.DriverPostgres {
		return rebind(query)
	}
	return query
}

// rebind rewrites ? placeholders as $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// withTx runs fn in a database transaction
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(tags)
	return string(data)
}

// decodeTags parses a stored tag list. A corrupt value is logged with
// logAttrs and read as no tags.
func (s *Storage) decodeTags(raw string, logAttrs ...any) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		s.logger.Warn("invalid tags", append(logAttrs, "error", err)...)
		return []string{}
	}
	return tags
}
