package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erpsync/ebsconn/internal/model"
)

func TestColumnNameFor(t *testing.T) {
	tests := []struct {
		name     string
		resolver NameResolver
		attr     string
		want     string
	}{
		{"basic name", Basic{IdentityColumn: "user_name"}, "__NAME__", "user_name"},
		{"basic uid lower case", Basic{IdentityColumn: "user_name"}, "__uid__", "user_name"},
		{"basic pass through", Basic{IdentityColumn: "user_name"}, "email_address", "email_address"},
		{"basic keeps full name", Basic{IdentityColumn: "user_name"}, "person_fullname", "person_fullname"},
		{"account full name", NewAccount(), "PERSON_FULLNAME", "full_name"},
		{"account name", NewAccount(), "__Name__", "user_name"},
		{"account pass through", NewAccount(), "description", "description"},
		{"pass through is lower-cased", Basic{IdentityColumn: "user_name"}, "Email_Address", "email_address"},
		{"responsibility identity", For(model.KindResponsibilityNames), "__UID__", "responsibility_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resolver.ColumnNameFor(tt.attr))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	plain := []string{"email_address", "description", "start_date", "directResponsibilities", "menuIds"}
	for _, kind := range model.Kinds {
		r := For(kind)
		for _, attr := range plain {
			assert.Equal(t, strings.ToLower(attr), r.AttributeNameFor(r.ColumnNameFor(attr)), "kind %s attr %s", kind, attr)
		}
	}

	acct := For(model.KindAccount)
	for _, attr := range []string{"__NAME__", "__name__", "__UID__", "__Uid__"} {
		assert.Equal(t, ColumnUserName, acct.AttributeNameFor(acct.ColumnNameFor(attr)))
	}
	assert.Equal(t, model.AttrFullName, acct.AttributeNameFor(acct.ColumnNameFor("Person_FullName")))
	assert.Equal(t, model.AttrFullName, acct.AttributeNameFor("FULL_NAME"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "full_name", Resolve(model.AttrFullName, model.KindAccount, ToColumn))
	assert.Equal(t, "person_fullname", Resolve("full_name", model.KindAccount, ToAttribute))
	assert.Equal(t, "full_name", Resolve("full_name", model.KindResponsibilityNames, ToAttribute))
	assert.Equal(t, "last_logon_date", Resolve("LAST_LOGON_DATE", model.KindAccount, ToAttribute))
	assert.Equal(t, "responsibility_name", Resolve(model.AttrName, model.KindAuditorResps, ToColumn))
	assert.Equal(t, "user_name", Resolve(model.AttrName, model.KindDirectResponsibilities, ToColumn))
}
