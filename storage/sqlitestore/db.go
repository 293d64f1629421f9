// Package sqlitestore keeps rate limit and session records in SQLite.
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	maxWriterConns = 1 // SQLite allows one writer at a time
	maxReaderConns = 4
)

// DB holds a single-connection writer pool and a small reader pool on the
// same database file.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// NewDB opens the database file at dbPath in WAL mode and migrates it.
func NewDB(dbPath string) (*DB, error) {
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func open(dsn string) (*DB, error) {
	writer, err := openPool(dsn, maxWriterConns)
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore open] writer: %w", err)
	}
	reader, err := openPool(dsn, maxReaderConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("[sqlitestore open] reader: %w", err)
	}
	return &DB{Writer: writer, Reader: reader}, nil
}

func openPool(dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)
	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close closes both pools and reports the first failure.
func (db *DB) Close() error {
	readerErr := db.Reader.Close()
	writerErr := db.Writer.Close()
	if readerErr != nil {
		return fmt.Errorf("[DB Close] reader: %w", readerErr)
	}
	if writerErr != nil {
		return fmt.Errorf("[DB Close] writer: %w", writerErr)
	}
	return nil
}
