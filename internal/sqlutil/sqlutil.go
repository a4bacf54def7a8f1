// Package sqlutil holds small helpers for scanning query results.
package sqlutil

import (
	"fmt"
	"strings"

	"github.com/erpsync/ebsconn/internal/store"
)

// Row is one result row keyed by lower-cased column name.
type Row map[string]any

// String returns the column as text, or "" when it is NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ScanMap scans the current row into a Row. Byte slices are copied into
// strings because drivers may reuse their buffers.
func ScanMap(rows store.Rows, columns []string) (Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, col := range columns {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[strings.ToLower(col)] = v
	}
	return row, nil
}

// ScanRows scans all rows into a slice using the provided scanner and closes rows.
func ScanRows[T any](rows store.Rows, scan func(Row) (T, error)) ([]T, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []T
	for rows.Next() {
		row, err := ScanMap(rows, columns)
		if err != nil {
			return nil, err
		}
		item, err := scan(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
