package repository

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/RealZimboGuy/catalogflow/internal/config"
	"github.com/RealZimboGuy/catalogflow/internal/migrations"
)

// DB is a connection pool that knows its SQL dialect.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// NewDB wraps an already opened pool.
func NewDB(db *sqlx.DB, dialect Dialect) *DB {
	return &DB{DB: db, Dialect: dialect}
}

// Open connects to the database configured in s.
func Open(ctx context.Context, s config.Settings) (*DB, error) {
	dialect, err := ParseDialect(s.DatabaseType)
	if err != nil {
		return nil, err
	}

	var dsn string
	switch dialect {
	case Postgres:
		slog.Info("Opening Postgres database")
		dsn = s.DatabaseURL
	case MySQL:
		slog.Info("Opening MySQL database")
		dsn = strings.TrimPrefix(s.DatabaseURL, "mysql://")
	case SQLite:
		slog.Info("Opening SQLite database", "file", s.DatabaseSqlLiteFile)
		dsn = sqliteDSN(s.DatabaseSqlLiteFile)
	}

	db, err := sqlx.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return NewDB(db, dialect), nil
}

func sqliteDSN(file string) string {
	sep := "?"
	if strings.Contains(file, "?") {
		sep = "&"
	}
	return file + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// RunMigrations applies the embedded migrations of the configured dialect.
func RunMigrations(s config.Settings) error {
	dialect, err := ParseDialect(s.DatabaseType)
	if err != nil {
		return err
	}
	dbURL := s.DatabaseURL
	if dialect == SQLite {
		dbURL = "sqlite3://" + sqliteDSN(s.DatabaseSqlLiteFile)
	}

	sub, err := fs.Sub(migrations.FS, dialect.migrationsDir())
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	slog.Info("Running migrations", "dialect", dialect)
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func (db *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// insertReturningID inserts one row and returns its generated id.
func (db *DB) insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	if db.Dialect.supportsReturning() {
		var id int64
		err := ext.QueryRowxContext(ctx, ext.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// nextID returns the next free id of a dictionary table whose ids are
// assigned by the application.
func nextID(ctx context.Context, q sqlx.QueryerContext, table string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, "SELECT COALESCE(MAX(id), 0) + 1 FROM "+table)
	return id, err
}

// countRefs counts the rows of table where column equals id.
func countRefs(ctx context.Context, ext sqlx.ExtContext, table, column string, id int64) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE %s = ?", table, column)
	err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(query), id)
	return n, err
}
