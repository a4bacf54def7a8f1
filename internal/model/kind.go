// Package model defines the connector's framework-neutral object model.
package model

import (
	"fmt"
	"strings"
)

// Kind identifies an object class exposed by the connector.
type Kind string

const (
	KindAccount                  Kind = "account"
	KindResponsibilities         Kind = "responsibilities"
	KindDirectResponsibilities   Kind = "directResponsibilities"
	KindIndirectResponsibilities Kind = "indirectResponsibilities"
	KindResponsibilityNames      Kind = "responsibilityNames"
	KindAuditorResps             Kind = "auditorResps"
)

// Kinds lists every kind in a stable display order.
var Kinds = []Kind{
	KindAccount,
	KindResponsibilities,
	KindDirectResponsibilities,
	KindIndirectResponsibilities,
	KindResponsibilityNames,
	KindAuditorResps,
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown object kind %q", s)
}

// IsAssignment reports whether the kind lists user responsibility assignments.
func (k Kind) IsAssignment() bool {
	switch k {
	case KindResponsibilities, KindDirectResponsibilities, KindIndirectResponsibilities:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Well-known logical attribute names.
const (
	AttrName     = "__NAME__"
	AttrUID      = "__UID__"
	AttrFullName = "person_fullname"
)

// Account multi-valued responsibility attributes. Each one is filled from the
// assignment view(s) of the kind with the same name.
const (
	AttrResponsibilities         = "responsibilities"
	AttrDirectResponsibilities   = "directResponsibilities"
	AttrIndirectResponsibilities = "indirectResponsibilities"
)

// Auditor attributes describing menus, functions and forms reachable from a
// responsibility.
const (
	AttrMenuIds                = "menuIds"
	AttrMenuNames              = "menuNames"
	AttrUserMenuNames          = "userMenuNames"
	AttrFunctionIds            = "functionIds"
	AttrFunctionNames          = "functionNames"
	AttrUserFunctionNames      = "userFunctionNames"
	AttrReadOnlyFunctionIds    = "readOnlyFunctionIds"
	AttrReadWriteFunctionIds   = "readWriteFunctionIds"
	AttrReadOnlyFunctionNames  = "readOnlyFunctionNames"
	AttrReadWriteFunctionNames = "readWriteFunctionNames"
	AttrFormIds                = "formIds"
	AttrFormNames              = "formNames"
	AttrUserFormNames          = "userFormNames"
	AttrReadOnlyFormIds        = "readOnlyFormIds"
	AttrReadWriteFormIds       = "readWriteFormIds"
	AttrReadOnlyFormNames      = "readOnlyFormNames"
	AttrReadWriteFormNames     = "readWriteFormNames"
	AttrReadOnlyUserFormNames  = "readOnlyUserFormNames"
	AttrReadWriteUserFormNames = "readWriteUserFormNames"
)

// ResponsibilityAttrKind maps an account responsibility attribute to the
// assignment kind that produces its values.
func ResponsibilityAttrKind(attr string) (Kind, bool) {
	switch {
	case strings.EqualFold(attr, AttrResponsibilities):
		return KindResponsibilities, true
	case strings.EqualFold(attr, AttrDirectResponsibilities):
		return KindDirectResponsibilities, true
	case strings.EqualFold(attr, AttrIndirectResponsibilities):
		return KindIndirectResponsibilities, true
	}
	return "", false
}
