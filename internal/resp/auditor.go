package resp

import (
	"context"
	"fmt"
	"strings"

	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

// AuditorAttributes are the menu, function and form attributes resolved for
// a responsibility.
var AuditorAttributes = []string{
	model.AttrMenuIds, model.AttrMenuNames, model.AttrUserMenuNames,
	model.AttrFunctionIds, model.AttrFunctionNames, model.AttrUserFunctionNames,
	model.AttrReadOnlyFunctionIds, model.AttrReadWriteFunctionIds,
	model.AttrReadOnlyFunctionNames, model.AttrReadWriteFunctionNames,
	model.AttrFormIds, model.AttrFormNames, model.AttrUserFormNames,
	model.AttrReadOnlyFormIds, model.AttrReadWriteFormIds,
	model.AttrReadOnlyFormNames, model.AttrReadWriteFormNames,
	model.AttrReadOnlyUserFormNames, model.AttrReadWriteUserFormNames,
}

// AuditorSource yields responsibilities with everything reachable through
// their menu tree.
type AuditorSource struct {
	NameSource
}

func (s *AuditorSource) Kind() model.Kind { return model.KindAuditorResps }

// Detail walks the responsibility's menu tree. Menus and functions excluded
// for the responsibility are left out, and an excluded submenu prunes its
// subtree.
func (s *AuditorSource) Detail(ctx context.Context, conn store.Conn, name string, _ Options, b *merge.Builder) error {
	wanted := false
	for _, attr := range AuditorAttributes {
		if b.Wants(attr) {
			wanted = true
			if err := b.AddAttribute(attr, nil); err != nil {
				return err
			}
		}
	}
	if !wanted {
		return nil
	}

	tree := menuTree(s.cfg.Dialect)

	menus, err := queryAll(ctx, conn, tree+`
SELECT m.menu_id, m.menu_name, m.user_menu_name
FROM menu_tree t
JOIN fnd_menus_vl m ON m.menu_id = t.menu_id
ORDER BY m.menu_id`, name, name)
	if err != nil {
		return fmt.Errorf("fetch menus for %s: %w", name, err)
	}
	for _, row := range menus {
		if err := addAll(b,
			model.AttrMenuIds, row["menu_id"],
			model.AttrMenuNames, row["menu_name"],
			model.AttrUserMenuNames, row["user_menu_name"],
		); err != nil {
			return err
		}
	}

	functions, err := queryAll(ctx, conn, tree+`
SELECT f.function_id, f.function_name, f.user_function_name, f.parameters,
	fm.form_id, fm.form_name, fm.user_form_name
FROM menu_tree t
JOIN fnd_menu_entries e ON e.menu_id = t.menu_id
JOIN fnd_form_functions_vl f ON f.function_id = e.function_id
LEFT JOIN fnd_form_vl fm ON fm.form_id = f.form_id
WHERE e.grant_flag = 'Y' AND NOT `+excluded("F", "f.function_id")+`
ORDER BY f.function_id`, name, name, name)
	if err != nil {
		return fmt.Errorf("fetch functions for %s: %w", name, err)
	}
	for _, row := range functions {
		if err := addFunction(b, row); err != nil {
			return err
		}
	}
	return nil
}

func addFunction(b *merge.Builder, row sqlutil.Row) error {
	readOnly := IsReadOnly(row.String("parameters"))

	idAttr, nameAttr := model.AttrReadWriteFunctionIds, model.AttrReadWriteFunctionNames
	if readOnly {
		idAttr, nameAttr = model.AttrReadOnlyFunctionIds, model.AttrReadOnlyFunctionNames
	}
	if err := addAll(b,
		model.AttrFunctionIds, row["function_id"],
		model.AttrFunctionNames, row["function_name"],
		model.AttrUserFunctionNames, row["user_function_name"],
		idAttr, row["function_id"],
		nameAttr, row["function_name"],
	); err != nil {
		return err
	}

	if row["form_id"] == nil {
		return nil
	}
	formIds, formNames, userFormNames := model.AttrReadWriteFormIds, model.AttrReadWriteFormNames, model.AttrReadWriteUserFormNames
	if readOnly {
		formIds, formNames, userFormNames = model.AttrReadOnlyFormIds, model.AttrReadOnlyFormNames, model.AttrReadOnlyUserFormNames
	}
	return addAll(b,
		model.AttrFormIds, row["form_id"],
		model.AttrFormNames, row["form_name"],
		model.AttrUserFormNames, row["user_form_name"],
		formIds, row["form_id"],
		formNames, row["form_name"],
		userFormNames, row["user_form_name"],
	)
}

// addAll adds alternating attribute name / value pairs.
func addAll(b *merge.Builder, pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := b.AddValue(pairs[i].(string), pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// IsReadOnly reports whether function parameters grant query-only access.
func IsReadOnly(parameters string) bool {
	p := strings.ToUpper(parameters)
	p = strings.NewReplacer(" ", "", "\"", "", "'", "").Replace(p)
	return strings.Contains(p, "QUERY_ONLY=YES")
}

// menuTree is a recursive CTE of the menus reachable from the named
// responsibility's root menu. It binds the responsibility name twice.
func menuTree(d store.Dialect) string {
	return d.RecursiveCTE("menu_tree", "menu_id",
		`	SELECT r.menu_id FROM fnd_responsibility_vl r WHERE r.responsibility_name = ?`,
		`	SELECT e.sub_menu_id
	FROM fnd_menu_entries e
	JOIN menu_tree t ON t.menu_id = e.menu_id
	WHERE e.sub_menu_id IS NOT NULL AND NOT `+excluded("M", "e.sub_menu_id"),
	)
}

// excluded matches an fnd_resp_functions exclusion rule of ruleType ("F" for
// functions, "M" for menus) on column for the named responsibility.
func excluded(ruleType, column string) string {
	return `EXISTS (
		SELECT 1 FROM fnd_resp_functions x
		JOIN fnd_responsibility_vl xr ON xr.responsibility_id = x.responsibility_id AND xr.application_id = x.application_id
		WHERE xr.responsibility_name = ? AND x.rule_type = '` + ruleType + `' AND x.action_id = ` + column + `)`
}
