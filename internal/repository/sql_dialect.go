package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/RealZimboGuy/catalogflow/internal/config"
)

// Dialect is the configured database type.
type Dialect string

const (
	Postgres Dialect = config.DATABASE_TYPE_POSTGRES
	MySQL    Dialect = config.DATABASE_TYPE_MYSQL
	SQLite   Dialect = config.DATABASE_TYPE_SQLLITE
)

func ParseDialect(databaseType string) (Dialect, error) {
	switch d := Dialect(strings.ToUpper(databaseType)); d {
	case Postgres, MySQL, SQLite:
		return d, nil
	}
	return "", fmt.Errorf("unsupported database type %q", databaseType)
}

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// migrationsDir is the embedded directory holding this dialect's migrations.
func (d Dialect) migrationsDir() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

func (d Dialect) supportsReturning() bool {
	return d == Postgres
}

// upsert builds an INSERT that updates updateCols when a row with the same
// key already exists. With no updateCols an existing row is left untouched.
func (d Dialect) upsert(table string, cols, keyCols, updateCols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)

	sets := make([]string, 0, len(updateCols))
	if d == MySQL {
		for _, c := range updateCols {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		if len(sets) == 0 {
			sets = append(sets, fmt.Sprintf("%s = %s", keyCols[0], keyCols[0]))
		}
		return base + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}

	if len(updateCols) == 0 {
		return base + fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(keyCols, ", "))
	}
	for _, c := range updateCols {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	return base + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(keyCols, ", "), strings.Join(sets, ", "))
}

// isUniqueViolation reports a primary key or unique constraint violation on
// any of the supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451 || myErr.Number == 1452
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23514"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 3819
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}
