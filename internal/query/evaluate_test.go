package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsync/ebsconn/internal/model"
)

func testEntity() model.Entity {
	return model.Entity{
		Kind: model.KindAccount,
		UID:  "JDOE",
		Name: "JDOE",
		Attributes: []model.Attribute{
			{Name: "email_address", Values: []any{"john.doe@example.com"}},
			{Name: "user_id", Values: []any{int64(1042)}},
			{Name: "start_date", Values: []any{time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)}},
			{Name: "fax", Values: []any{}},
			{Name: "responsibilities", Values: []any{"General Ledger||GL||Standard||2020-03-01||null", "Payables||AP||Standard||2021-01-01||null"}},
		},
	}
}

func TestMatches(t *testing.T) {
	e := testEntity()

	tests := []struct {
		filter string
		want   bool
	}{
		{"", true},
		{"__NAME__==JDOE", true},
		{"__UID__==jdoe", false},
		{"user_id==1042", true},
		{"user_id==1042.0", true},
		{"user_id>1000", true},
		{"user_id<=999", false},
		{"start_date>=2020-03-01", true},
		{"start_date<2020-01-01", false},
		{"contains(email_address, DOE@)", true},
		{"endswith(email_address, .org)", false},
		{"present(email_address)", true},
		{"present(fax)", false},
		{"present(missing)", false},
		{`responsibilities=="Payables||AP||Standard||2021-01-01||null"`, true},
		{`all(responsibilities, "Payables||AP||Standard||2021-01-01||null", "General Ledger||GL||Standard||2020-03-01||null")`, true},
		{`all(responsibilities, "Payables||AP||Standard||2021-01-01||null", "Other")`, false},
		{"__NAME__!=JDOE", false},
		{"__NAME__==X | user_id==1042", true},
		{"__NAME__==JDOE & user_id==1", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			f, err := Parse(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Matches(f, e))
		})
	}
}

func TestMatchesMultiValueEquals(t *testing.T) {
	e := testEntity()
	f := EqualsFilter{Attr: "responsibilities", Values: []any{
		"Payables||AP||Standard||2021-01-01||null",
		"General Ledger||GL||Standard||2020-03-01||null",
	}}
	assert.True(t, Matches(f, e))

	f.Values = f.Values[:1]
	f.Values = append(f.Values, "Other")
	assert.False(t, Matches(f, e))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "2024-05-01", ValueString(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-01 10:30:00", ValueString(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, "abc", ValueString([]byte("abc")))
	assert.Equal(t, "1.5", ValueString(1.5))
	assert.Equal(t, "true", ValueString(true))
	assert.Equal(t, "", ValueString(nil))
}
