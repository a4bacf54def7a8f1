package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/resolver"
)

var accountColumns = []string{"user_id", "user_name", "email_address", "description", "full_name", "start_date", "end_date"}

func TestTranslate(t *testing.T) {
	tr := NewTranslator(resolver.NewAccount(), accountColumns, []string{"responsibilities"})

	tests := []struct {
		name     string
		filter   string
		wantOK   bool
		wantSQL  string
		wantArgs []any
	}{
		{name: "nil filter matches all", filter: "", wantOK: true, wantSQL: "", wantArgs: nil},
		{name: "name alias", filter: "__NAME__==JDOE", wantOK: true, wantSQL: "user_name = ?", wantArgs: []any{"JDOE"}},
		{name: "uid alias mixed case", filter: "__uid__==JDOE", wantOK: true, wantSQL: "user_name = ?", wantArgs: []any{"JDOE"}},
		{name: "full name remapped", filter: `person_fullname=="Doe, John"`, wantOK: true, wantSQL: "full_name = ?", wantArgs: []any{"Doe, John"}},
		{
			name:     "and of supported",
			filter:   "__NAME__==JDOE & email_address==j@x",
			wantOK:   true,
			wantSQL:  "(user_name = ? AND email_address = ?)",
			wantArgs: []any{"JDOE", "j@x"},
		},
		{
			name:     "nested or keeps parameter order",
			filter:   "description==a | (user_id==1 & user_id==2)",
			wantOK:   true,
			wantSQL:  "(description = ? OR (user_id = ? AND user_id = ?))",
			wantArgs: []any{"a", "1", "2"},
		},
		{name: "unselected column", filter: "fax==123", wantOK: false},
		{name: "multi-valued attribute", filter: "responsibilities==X", wantOK: false},
		{name: "and with unsupported side", filter: "__NAME__==JDOE & fax==1", wantOK: false},
		{name: "or with unsupported side", filter: "fax==1 | __NAME__==JDOE", wantOK: false},
		{name: "negation", filter: "__NAME__!=JDOE", wantOK: false},
		{name: "range", filter: "start_date>2020-01-01", wantOK: false},
		{name: "substring", filter: "startswith(user_name, J)", wantOK: false},
		{name: "presence", filter: "present(email_address)", wantOK: false},
		{name: "containment", filter: "all(user_name, a)", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.filter)
			require.NoError(t, err)

			pred, ok := tr.Translate(f)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, pred)
				return
			}
			assert.Equal(t, tt.wantSQL, pred.SQL)
			assert.Equal(t, tt.wantArgs, pred.Args)
		})
	}
}

func TestTranslateMultiValueEquality(t *testing.T) {
	tr := NewTranslator(resolver.NewAccount(), accountColumns, nil)
	_, ok := tr.Translate(EqualsFilter{Attr: "user_name", Values: []any{"a", "b"}})
	assert.False(t, ok)
	_, ok = tr.Translate(EqualsFilter{Attr: "user_name", Values: []any{nil}})
	assert.False(t, ok)
}

func TestTranslateUnsupportedOnlyFilters(t *testing.T) {
	filters := []string{
		"fax==1",
		"fax==1 & last_logon_date==2",
		"fax==1 | owner==x",
		"(fax==1 | owner==x) & employee_number==7",
	}
	for _, expr := range filters {
		f, err := Parse(expr)
		require.NoError(t, err)
		pred, ok := TranslateFilter(f, model.KindAccount, accountColumns)
		assert.False(t, ok, expr)
		assert.Nil(t, pred, expr)
	}
}

func TestTranslateFilterUsesKindResolver(t *testing.T) {
	pred, ok := TranslateFilter(Equals("__NAME__", "System Administrator"), model.KindResponsibilityNames,
		[]string{"responsibility_name", "application_name"})
	require.True(t, ok)
	assert.Equal(t, "responsibility_name = ?", pred.SQL)
	assert.True(t, (&NativePredicate{}).Empty())
	assert.True(t, (*NativePredicate)(nil).Empty())
}
