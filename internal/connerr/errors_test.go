package connerr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDataAccess(t *testing.T) {
	err := WrapDataAccess("query responsibilities", sql.ErrConnDone)

	assert.True(t, IsDataAccess(err))
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Equal(t, "query responsibilities: sql: connection is already closed", err.Error())

	var dae *DataAccessError
	assert.True(t, errors.As(err, &dae))
	assert.Equal(t, "query responsibilities", dae.Op)
}

func TestWrapDataAccessKeepsExistingWrap(t *testing.T) {
	inner := WrapDataAccess("prepare", sql.ErrTxDone)
	outer := WrapDataAccess("search", fmt.Errorf("streaming: %w", inner))

	var dae *DataAccessError
	assert.True(t, errors.As(outer, &dae))
	assert.Equal(t, "prepare", dae.Op)
	assert.Nil(t, WrapDataAccess("noop", nil))
}

func TestInvalidState(t *testing.T) {
	err := NewInvalidState("no attributes merged")
	assert.True(t, IsInvalidState(err))
	assert.False(t, IsDataAccess(err))
	assert.Equal(t, "invalid state: no attributes merged", err.Error())
}
