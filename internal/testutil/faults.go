package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/erpsync/ebsconn/internal/store"
)

// ErrInjected is the failure FaultConn injects.
var ErrInjected = errors.New("injected failure")

// ErrCursorBusy is returned by a SingleCursor FaultConn when a query starts
// while another cursor is open.
var ErrCursorBusy = errors.New("another cursor is open on this connection")

// FaultConn wraps a store.Conn, counts transaction outcomes and open
// cursors, and can fail statements or cut a result stream short.
type FaultConn struct {
	store.Conn

	// FailPrepare makes every Prepare fail.
	FailPrepare bool
	// FailAfterRows, when positive, makes the first query's cursor fail after
	// yielding that many rows.
	FailAfterRows int
	// SingleCursor reports a single-cursor dialect and rejects a query
	// issued while another cursor is open, the way lib/pq behaves.
	SingleCursor bool

	mu        sync.Mutex
	commits   int
	rollbacks int
	queries   int
	open      int
	cursors   int
}

// NewFaultConn wraps conn.
func NewFaultConn(conn store.Conn) *FaultConn {
	return &FaultConn{Conn: conn}
}

func (c *FaultConn) Dialect() store.Dialect {
	d := c.Conn.Dialect()
	if c.SingleCursor {
		d.SingleCursor = true
	}
	return d
}

func (c *FaultConn) Prepare(ctx context.Context, query string) (store.Stmt, error) {
	if c.FailPrepare {
		return nil, ErrInjected
	}
	stmt, err := c.Conn.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	c.track(1)
	return &faultStmt{Stmt: stmt, conn: c}, nil
}

func (c *FaultConn) Commit() error {
	c.mu.Lock()
	c.commits++
	c.mu.Unlock()
	return c.Conn.Commit()
}

func (c *FaultConn) Rollback() error {
	c.mu.Lock()
	c.rollbacks++
	c.mu.Unlock()
	return c.Conn.Rollback()
}

// Commits returns how many times Commit was called.
func (c *FaultConn) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

// Rollbacks returns how many times Rollback was called.
func (c *FaultConn) Rollbacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbacks
}

// Open returns the number of statements and cursors not yet closed.
func (c *FaultConn) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *FaultConn) track(delta int) {
	c.mu.Lock()
	c.open += delta
	c.mu.Unlock()
}

// openCursor registers a new cursor, failing when the connection allows
// only one and it is taken.
func (c *FaultConn) openCursor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SingleCursor && c.cursors > 0 {
		return ErrCursorBusy
	}
	c.cursors++
	c.open++
	return nil
}

func (c *FaultConn) closeCursor() {
	c.mu.Lock()
	c.cursors--
	c.open--
	c.mu.Unlock()
}

func (c *FaultConn) nextQuery() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	return c.queries
}

type faultStmt struct {
	store.Stmt
	conn   *FaultConn
	closed bool
}

func (s *faultStmt) Query(ctx context.Context, args ...any) (store.Rows, error) {
	if err := s.conn.openCursor(); err != nil {
		return nil, err
	}
	rows, err := s.Stmt.Query(ctx, args...)
	if err != nil {
		s.conn.closeCursor()
		return nil, err
	}
	r := &faultRows{Rows: rows, conn: s.conn, failAfter: -1}
	if s.conn.nextQuery() == 1 && s.conn.FailAfterRows > 0 {
		r.failAfter = s.conn.FailAfterRows
	}
	return r, nil
}

func (s *faultStmt) Close() error {
	if !s.closed {
		s.closed = true
		s.conn.track(-1)
	}
	return s.Stmt.Close()
}

type faultRows struct {
	store.Rows
	conn      *FaultConn
	failAfter int
	seen      int
	err       error
	closed    bool
}

func (r *faultRows) Next() bool {
	if r.failAfter >= 0 && r.seen >= r.failAfter {
		r.err = ErrInjected
		return false
	}
	if !r.Rows.Next() {
		return false
	}
	r.seen++
	return true
}

func (r *faultRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.Rows.Err()
}

func (r *faultRows) Close() error {
	if !r.closed {
		r.closed = true
		r.conn.closeCursor()
	}
	return r.Rows.Close()
}
