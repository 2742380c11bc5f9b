package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore handles all relational database operations. It implements
// every repository interface in internal/port.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// nullStr maps the empty string to SQL NULL on writes.
func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// nullTime maps a nil *time.Time to SQL NULL on writes.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// nullJSON maps empty JSON blobs to SQL NULL on writes. Non-empty blobs are
// sent as text and cast to jsonb in the statement.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
