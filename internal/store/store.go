// Package store opens the ERP database and exposes the narrow connection
// interface the search engine consumes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/erpsync/ebsconn/internal/connerr"
)

// Drivers lists the database/sql driver names that Open accepts.
var Drivers = []string{"sqlite", "postgres"}

// Open opens a database handle and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	supported := false
	for _, d := range Drivers {
		if d == driver {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Rows is a forward-only result cursor. *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// Stmt is a prepared statement.
type Stmt interface {
	Query(ctx context.Context, args ...any) (Rows, error)
	Close() error
}

// Conn is the transactional connection an operation owns for its duration.
type Conn interface {
	Dialect() Dialect
	Prepare(ctx context.Context, query string) (Stmt, error)
	Commit() error
	Rollback() error
}

// Tx is a Conn backed by a database/sql transaction.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// Begin starts a transaction on db.
func Begin(ctx context.Context, db *sql.DB, dialect Dialect) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, connerr.WrapDataAccess("begin transaction", err)
	}
	return &Tx{tx: tx, dialect: dialect}, nil
}

// Dialect returns the SQL dialect of the connection.
func (t *Tx) Dialect() Dialect { return t.dialect }

// Prepare prepares query, rewriting "?" placeholders for the dialect.
func (t *Tx) Prepare(ctx context.Context, query string) (Stmt, error) {
	stmt, err := t.tx.PrepareContext(ctx, t.dialect.Rebind(query))
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return &txStmt{stmt: stmt}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

type txStmt struct {
	stmt *sql.Stmt
}

func (s *txStmt) Query(ctx context.Context, args ...any) (Rows, error) {
	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (s *txStmt) Close() error { return s.stmt.Close() }

// Finish ends an operation on conn: nil err commits, anything else is logged,
// rolled back and surfaced as a data-access failure.
func Finish(conn Conn, log *slog.Logger, op string, err error) error {
	if err == nil {
		if cerr := conn.Commit(); cerr != nil {
			log.Error("commit failed", "op", op, "err", cerr)
			return connerr.WrapDataAccess(op+": commit", cerr)
		}
		return nil
	}

	log.Error("operation failed, rolling back", "op", op, "err", err)
	if rerr := conn.Rollback(); rerr != nil {
		log.Error("rollback failed", "op", op, "err", rerr)
	}
	return connerr.WrapDataAccess(op, err)
}
