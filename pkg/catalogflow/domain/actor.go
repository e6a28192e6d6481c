package domain

import (
	"database/sql"
	"time"
)

type Actor struct {
	ID         int64          `db:"id"`
	Name       string         `db:"name"`
	ApiKeyHash sql.NullString `db:"api_key_hash"`
	Created    time.Time      `db:"created"`
	Enabled    bool           `db:"enabled"`
}

type ActorGroup struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
