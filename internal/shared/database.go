package shared

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// InMemoryDatabase is the path that opens a private SQLite database.
const InMemoryDatabase = ":memory:"

// NewDatabase opens a connection to a SQLite database at the specified path with foreign keys enforced.
//
// The path can be ":memory:" for an in-memory database. Every connection to ":memory:" is a separate
// database, so the pool is pinned to a single connection in that case.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == InMemoryDatabase {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// ConfigureDatabase sets connection pool settings for the database.
//
// In-memory databases keep their single connection.
func ConfigureDatabase(db *sql.DB, path string, maxOpenConns, maxIdleConns int) {
	if path == InMemoryDatabase {
		return
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
