package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f, err := Parse(`end_date < today | !(start_date >= "2020-01-31T08:30") & user_name == "today"`)
	require.NoError(t, err)

	got := ResolveDates(f, now)
	assert.Equal(t,
		`(end_date<"2026-03-01" | (!start_date>="2020-01-31 08:30:00" & user_name=="today"))`,
		got.String())
}

func TestResolveDatesNil(t *testing.T) {
	assert.Nil(t, ResolveDates(nil, time.Now()))
}
