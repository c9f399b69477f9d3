// Package store persists users in SQLite (default) or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"gangland/internal/user"
	"gangland/pkg/platform/sentinel"
)

const userColumns = `uuid, inventory, data, consoleid, consoleticket, ip`

// SQLStore is the database-backed user store. Every operation is one statement.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	wipe    bool
}

type Option func(*SQLStore)

func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLStore) {
		s.logger = logger
	}
}

// WithWipe drops the users table before migrating.
func WithWipe(wipe bool) Option {
	return func(s *SQLStore) {
		s.wipe = wipe
	}
}

// Open connects to the database, applies pragmas and creates the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, err
	}
	if d.driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if d.driver == DriverSQLite {
		// A single connection keeps WAL writers serialized.
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db, driver, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database and migrates it.
func New(ctx context.Context, db *sql.DB, driver string, opts ...Option) (*SQLStore, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, err
	}
	s := &SQLStore{db: db, dialect: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", driver, errors.Join(sentinel.ErrUnavailable, err))
	}
	for _, p := range d.pragmas() {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if s.wipe {
		s.logger.WarnContext(ctx, "wiping users table as configured")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
			return nil, fmt.Errorf("wipe users table: %w", err)
		}
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate users table: %w", err)
		}
	}
	return nil
}

// DB exposes the handle for health checks and tests.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) FindByConsoleID(ctx context.Context, consoleID string) (*user.User, error) {
	return s.findOne(ctx, "consoleid", consoleID)
}

func (s *SQLStore) FindByTicket(ctx context.Context, ticket string) (*user.User, error) {
	return s.findOne(ctx, "consoleticket", ticket)
}

func (s *SQLStore) FindByIP(ctx context.Context, ip string) (*user.User, error) {
	return s.findOne(ctx, "ip", ip)
}

func (s *SQLStore) FindByUUID(ctx context.Context, uuid string) (*user.User, error) {
	return s.findOne(ctx, "uuid", uuid)
}

// findOne returns the first row matching column. column is never caller input.
func (s *SQLStore) findOne(ctx context.Context, column, value string) (*user.User, error) {
	query := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ? LIMIT 1`)
	row := s.db.QueryRowContext(ctx, query, value)

	var (
		u                                      user.User
		inventory, data, consoleID, ticket, ip sql.NullString
	)
	if err := row.Scan(&u.UUID, &inventory, &data, &consoleID, &ticket, &ip); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user by %s: %w", column, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	u.Inventory = inventory.String
	u.Data = data.String
	u.ConsoleID = consoleID.String
	u.ConsoleTicket = ticket.String
	u.IP = ip.String
	return &u, nil
}

func (s *SQLStore) Insert(ctx context.Context, u *user.User) error {
	query := s.dialect.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		u.UUID, nullable(u.Inventory), nullable(u.Data), nullable(u.ConsoleID), nullable(u.ConsoleTicket), nullable(u.IP))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user %s: %w", u.UUID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UpdateByConsoleID rewrites ticket, uuid and ip of every row for consoleID.
func (s *SQLStore) UpdateByConsoleID(ctx context.Context, consoleID, ticket, uuid, ip string) error {
	query := s.dialect.rebind(`UPDATE users SET consoleticket = ?, uuid = ?, ip = ? WHERE consoleid = ?`)
	res, err := s.db.ExecContext(ctx, query, ticket, uuid, nullable(ip), consoleID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user for console %s: %w", consoleID, sentinel.ErrConflict)
		}
		return fmt.Errorf("update user for console: %w", err)
	}
	return requireAffected(res, "console "+consoleID)
}

func (s *SQLStore) UpdateInventory(ctx context.Context, uuid, inventory string) error {
	return s.updateColumn(ctx, "inventory", uuid, inventory)
}

func (s *SQLStore) UpdateData(ctx context.Context, uuid, data string) error {
	return s.updateColumn(ctx, "data", uuid, data)
}

func (s *SQLStore) updateColumn(ctx context.Context, column, uuid, value string) error {
	query := s.dialect.rebind(`UPDATE users SET ` + column + ` = ? WHERE uuid = ?`)
	res, err := s.db.ExecContext(ctx, query, value, uuid)
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	return requireAffected(res, "user "+uuid)
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
