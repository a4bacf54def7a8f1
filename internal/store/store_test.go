package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsync/ebsconn/internal/connerr"
)

type recordingConn struct {
	commits, rollbacks int
	commitErr          error
}

func (c *recordingConn) Dialect() Dialect { return SQLite }
func (c *recordingConn) Prepare(context.Context, string) (Stmt, error) {
	return nil, errors.New("not implemented")
}
func (c *recordingConn) Commit() error   { c.commits++; return c.commitErr }
func (c *recordingConn) Rollback() error { c.rollbacks++; return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFinishCommitsOnSuccess(t *testing.T) {
	conn := &recordingConn{}
	require.NoError(t, Finish(conn, discardLogger(), "search", nil))
	assert.Equal(t, 1, conn.commits)
	assert.Equal(t, 0, conn.rollbacks)
}

func TestFinishRollsBackAndWraps(t *testing.T) {
	conn := &recordingConn{}
	cause := errors.New("ORA-01555: snapshot too old")

	err := Finish(conn, discardLogger(), "search", cause)
	require.Error(t, err)
	assert.True(t, connerr.IsDataAccess(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, conn.commits)
	assert.Equal(t, 1, conn.rollbacks)
}

func TestFinishWrapsCommitFailure(t *testing.T) {
	conn := &recordingConn{commitErr: errors.New("disk full")}
	err := Finish(conn, discardLogger(), "search", nil)
	assert.True(t, connerr.IsDataAccess(err))
	assert.Equal(t, 0, conn.rollbacks)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oci8", "user/pass@db")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestTxRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE t (name TEXT); INSERT INTO t VALUES ('a'), ('b');`)
	require.NoError(t, err)

	tx, err := Begin(ctx, db, SQLite)
	require.NoError(t, err)

	stmt, err := tx.Prepare(ctx, "SELECT name FROM t WHERE name <> ? ORDER BY name")
	require.NoError(t, err)
	defer stmt.Close()

	rows, err := stmt.Query(ctx, "a")
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	assert.Equal(t, []string{"b"}, names)
	require.NoError(t, tx.Commit())
	assert.Equal(t, "sqlite", tx.Dialect().Name)
}
