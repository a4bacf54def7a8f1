package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/model"
)

func TestBuildWithoutAttributesFails(t *testing.T) {
	b := New([]string{"x"})
	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, connerr.IsInvalidState(err))
}

func TestBuildAfterOnlyUninterestingAttributesFails(t *testing.T) {
	b := New([]string{"x"})
	require.NoError(t, b.AddAttribute("y", []any{"a"}))
	_, err := b.Build()
	assert.True(t, connerr.IsInvalidState(err))
}

func TestNullNeverErases(t *testing.T) {
	b := New([]string{"X"})
	require.NoError(t, b.AddAttribute("X", []any{"a", "b"}))
	require.NoError(t, b.AddAttribute("X", nil))
	require.NoError(t, b.AddAttribute("X", []any{"b", "c"}))

	attrs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "X", attrs[0].Name)
	assert.Equal(t, []any{"a", "b", "c"}, attrs[0].Values)
}

func TestExplicitlyEmptyAttributeIsRecorded(t *testing.T) {
	b := New([]string{"fax", "email_address"})
	require.NoError(t, b.AddAttribute("fax", nil))
	require.NoError(t, b.AddValue("email_address", nil))

	attrs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "fax", attrs[0].Name)
	assert.Empty(t, attrs[0].Values)
	assert.Equal(t, "email_address", attrs[1].Name)
}

func TestInterestIsCaseInsensitive(t *testing.T) {
	b := New([]string{"UserMenuNames"})
	require.NoError(t, b.AddAttribute("usermenunames", []any{"Main"}))
	require.NoError(t, b.AddAttribute("USERMENUNAMES", []any{"Main", "Sub"}))
	require.NoError(t, b.AddAttribute("functionIds", []any{int64(1)}))

	attrs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "UserMenuNames", attrs[0].Name)
	assert.Equal(t, []any{"Main", "Sub"}, attrs[0].Values)
}

func TestNamesFollowInterestSpelling(t *testing.T) {
	b := New([]string{"menuIds", "EMAIL_ADDRESS"})
	require.NoError(t, b.AddValue("email_address", "a@example.com"))
	require.NoError(t, b.AddValue("MENUIDS", int64(1)))

	attrs, err := b.Build()
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "EMAIL_ADDRESS", attrs[0].Name)
	assert.Equal(t, "menuIds", attrs[1].Name)

	b = New(nil)
	require.NoError(t, b.AddValue("Fax", "555"))
	require.NoError(t, b.AddValue("fax", "556"))
	attrs, err = b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Fax", attrs[0].Name)
	assert.Equal(t, []any{"555", "556"}, attrs[0].Values)
}

func TestNilInterestAcceptsEverything(t *testing.T) {
	b := New(nil)
	require.NoError(t, b.AddAttributes(
		model.Attribute{Name: "a", Values: []any{1}},
		model.Attribute{Name: "b", Values: []any{"x"}},
	))
	assert.Equal(t, 2, b.Len())
}

func TestValueKeysCollapseDriverRepresentations(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	b := New(nil)
	require.NoError(t, b.AddAttribute("ids", []any{int64(7), 7, int32(7)}))
	require.NoError(t, b.AddAttribute("names", []any{"x", []byte("x")}))
	require.NoError(t, b.AddAttribute("dates", []any{ts, ts.In(time.FixedZone("X", 3600))}))

	attrs, err := b.Build()
	require.NoError(t, err)
	for _, a := range attrs {
		assert.Len(t, a.Values, 1, a.Name)
	}
}

func TestNoDuplicatesAndNoForeignAttributes(t *testing.T) {
	interest := []string{"a", "b"}
	contributions := []model.Attribute{
		{Name: "a", Values: []any{"1", "2"}},
		{Name: "c", Values: []any{"9"}},
		{Name: "B", Values: []any{"x"}},
		{Name: "a", Values: []any{"2", "3", "1"}},
		{Name: "b", Values: []any{"x", "y"}},
		{Name: "a", Values: nil},
	}

	b := New(interest)
	for _, c := range contributions {
		require.NoError(t, b.AddAttribute(c.Name, c.Values))
	}
	attrs, err := b.Build()
	require.NoError(t, err)

	require.Len(t, attrs, 2)
	for _, a := range attrs {
		assert.Contains(t, []string{"a", "b"}, a.Name)
		seen := map[any]bool{}
		for _, v := range a.Values {
			assert.False(t, seen[v], "duplicate %v in %s", v, a.Name)
			seen[v] = true
		}
	}
	assert.Equal(t, []any{"1", "2", "3"}, attrs[0].Values)
	assert.Equal(t, []any{"x", "y"}, attrs[1].Values)
}

func TestBuilderIsConsumedByBuild(t *testing.T) {
	b := New(nil)
	require.NoError(t, b.AddValue("a", "1"))
	attrs, err := b.Build()
	require.NoError(t, err)

	attrs[0].Values[0] = "mutated"

	_, err = b.Build()
	assert.True(t, connerr.IsInvalidState(err))
	assert.True(t, connerr.IsInvalidState(b.AddValue("a", "2")))
}
