package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b LIKE '%?%' AND c = ?"

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b LIKE '%?%' AND c = $2", Postgres.Rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = :1 AND b LIKE '%?%' AND c = :2", Oracle.Rebind(q))
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "sqlite"},
		{"SQLite", "sqlite"},
		{"postgresql", "postgres"},
		{" oracle ", "oracle"},
	}
	for _, tt := range tests {
		d, err := DialectFor(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Name)
	}

	_, err := DialectFor("db2")
	assert.Error(t, err)
	assert.Equal(t, "SYSDATE", Oracle.Now)
}

func TestRecursiveCTE(t *testing.T) {
	anchor, step := "SELECT 1", "SELECT n + 1 FROM nums WHERE n < 3"

	sqlite := SQLite.RecursiveCTE("nums", "n", anchor, step)
	assert.True(t, strings.HasPrefix(sqlite, "WITH RECURSIVE nums (n) AS ("))
	assert.Contains(t, sqlite, "\nUNION\n")
	assert.NotContains(t, sqlite, "UNION ALL")

	assert.Equal(t, sqlite, Postgres.RecursiveCTE("nums", "n", anchor, step))

	oracle := Oracle.RecursiveCTE("nums", "n", anchor, step)
	assert.True(t, strings.HasPrefix(oracle, "WITH nums (n) AS ("))
	assert.Contains(t, oracle, "UNION ALL")
	assert.True(t, strings.HasSuffix(oracle, ") CYCLE n SET is_cycle TO 'Y' DEFAULT 'N'"))
}
