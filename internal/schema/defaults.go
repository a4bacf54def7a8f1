package schema

import "github.com/erpsync/ebsconn/internal/model"

func boolPtr(b bool) *bool { return &b }

func str() *AttributeDefinition  { return &AttributeDefinition{Type: TypeString} }
func num() *AttributeDefinition  { return &AttributeDefinition{Type: TypeNumber} }
func date() *AttributeDefinition { return &AttributeDefinition{Type: TypeDate} }

func multi() *AttributeDefinition {
	return &AttributeDefinition{Type: TypeString, MultiValued: true}
}

// onRequest marks an attribute that costs a detail query per entity.
func onRequest(a *AttributeDefinition) *AttributeDefinition {
	a.ReturnedByDefault = boolPtr(false)
	return a
}

func assignmentAttributes() map[string]*AttributeDefinition {
	return map[string]*AttributeDefinition{
		"user_name":           {Type: TypeString, Required: true},
		"responsibility":      str(),
		"responsibility_name": str(),
		"responsibility_key":  str(),
		"application_name":    str(),
		"security_group_name": str(),
		"description":         str(),
		"start_date":          date(),
		"end_date":            date(),
		"assignment_type":     str(),
	}
}

// Default returns the built-in schema of the ERP identity tables.
func Default() *Schema {
	auditor := map[string]*AttributeDefinition{
		"responsibility_key": str(),
		"application_name":   str(),
		"description":        str(),
		"start_date":         date(),
		"end_date":           date(),
	}
	for _, name := range []string{
		model.AttrMenuIds, model.AttrMenuNames, model.AttrUserMenuNames,
		model.AttrFunctionIds, model.AttrFunctionNames, model.AttrUserFunctionNames,
		model.AttrReadOnlyFunctionIds, model.AttrReadWriteFunctionIds,
		model.AttrReadOnlyFunctionNames, model.AttrReadWriteFunctionNames,
		model.AttrFormIds, model.AttrFormNames, model.AttrUserFormNames,
		model.AttrReadOnlyFormIds, model.AttrReadWriteFormIds,
		model.AttrReadOnlyFormNames, model.AttrReadWriteFormNames,
		model.AttrReadOnlyUserFormNames, model.AttrReadWriteUserFormNames,
	} {
		auditor[name] = multi()
	}

	return &Schema{
		Version: CurrentSchemaVersion,
		Kinds: map[string]*KindDefinition{
			string(model.KindAccount): {
				Description: "Application users (FND_USER) joined with their person record.",
				Attributes: map[string]*AttributeDefinition{
					"user_id":                          num(),
					"email_address":                    str(),
					"fax":                              str(),
					"description":                      str(),
					"start_date":                       date(),
					"end_date":                         date(),
					"last_logon_date":                  date(),
					"password_date":                    date(),
					"employee_id":                      num(),
					"employee_number":                  str(),
					"npw_number":                       str(),
					model.AttrFullName:                 str(),
					model.AttrResponsibilities:         onRequest(multi()),
					model.AttrDirectResponsibilities:   onRequest(multi()),
					model.AttrIndirectResponsibilities: onRequest(multi()),
				},
			},
			string(model.KindResponsibilities): {
				Description: "All responsibility assignments of users.",
				Attributes:  assignmentAttributes(),
			},
			string(model.KindDirectResponsibilities): {
				Description: "Responsibilities assigned directly to users.",
				Attributes:  assignmentAttributes(),
			},
			string(model.KindIndirectResponsibilities): {
				Description: "Responsibilities users inherit through roles.",
				Attributes:  assignmentAttributes(),
			},
			string(model.KindResponsibilityNames): {
				Description: "Distinct responsibility definitions.",
				Attributes: map[string]*AttributeDefinition{
					"responsibility_id":  num(),
					"responsibility_key": str(),
					"application_name":   str(),
					"description":        str(),
					"start_date":         date(),
					"end_date":           date(),
				},
			},
			string(model.KindAuditorResps): {
				Description: "Responsibilities with the menus, functions and forms they grant.",
				Attributes:  auditor,
			},
		},
	}
}
