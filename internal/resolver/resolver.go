// Package resolver maps logical attribute names to physical column names and back.
package resolver

import (
	"strings"

	"github.com/erpsync/ebsconn/internal/model"
)

// Physical column aliases for the well-known logical names.
const (
	ColumnUserName           = "user_name"
	ColumnResponsibilityName = "responsibility_name"
	ColumnFullName           = "full_name"
)

// NameResolver converts between logical attribute names and column names for
// one object kind. Implementations are pure and unknown names pass through.
type NameResolver interface {
	AttributeNameFor(column string) string
	ColumnNameFor(attribute string) string
}

// Basic normalizes the identity aliases (__NAME__, __UID__) to a single column
// and lower-cases every other name.
type Basic struct {
	IdentityColumn string
}

// ColumnNameFor returns the column holding attribute.
func (b Basic) ColumnNameFor(attribute string) string {
	if model.IsIdentity(attribute) {
		return b.IdentityColumn
	}
	return strings.ToLower(attribute)
}

// AttributeNameFor returns the attribute stored in column.
func (b Basic) AttributeNameFor(column string) string {
	return strings.ToLower(column)
}

// Account extends Basic with the person full name remapping.
type Account struct {
	Basic
}

// NewAccount returns the resolver used for account searches.
func NewAccount() Account {
	return Account{Basic: Basic{IdentityColumn: ColumnUserName}}
}

// ColumnNameFor returns the column holding attribute.
func (a Account) ColumnNameFor(attribute string) string {
	if strings.EqualFold(attribute, model.AttrFullName) {
		return ColumnFullName
	}
	return a.Basic.ColumnNameFor(attribute)
}

// AttributeNameFor returns the attribute stored in column.
func (a Account) AttributeNameFor(column string) string {
	if strings.EqualFold(column, ColumnFullName) {
		return model.AttrFullName
	}
	return a.Basic.AttributeNameFor(column)
}

// For selects the resolver for an object kind.
func For(kind model.Kind) NameResolver {
	switch kind {
	case model.KindAccount:
		return NewAccount()
	case model.KindResponsibilityNames, model.KindAuditorResps:
		return Basic{IdentityColumn: ColumnResponsibilityName}
	default:
		return Basic{IdentityColumn: ColumnUserName}
	}
}

// Direction selects which way Resolve maps a name.
type Direction int

const (
	// ToColumn maps an attribute name to its column.
	ToColumn Direction = iota
	// ToAttribute maps a column name to its attribute.
	ToAttribute
)

// Resolve maps name for kind in the given direction.
func Resolve(name string, kind model.Kind, dir Direction) string {
	r := For(kind)
	if dir == ToAttribute {
		return r.AttributeNameFor(name)
	}
	return r.ColumnNameFor(name)
}
