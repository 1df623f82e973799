// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reshape converts wide roster tables (one column per job title,
// cells holding employee names) into normalized (department, title, name)
// entries.
package reshape

import (
	"strings"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// Reshape flattens the title columns of a roster table into a normalized
// roster. For every row and every configured title column present in the
// table, a non-empty trimmed cell yields one entry carrying the row's
// department, the column's label as title, and the cell text as the employee
// name. Empty cells mean "no one holds this title in this department" and
// are skipped.
//
// The department column must exist in the table schema; its absence is an
// *types.InvalidSchemaError, not an empty result, so callers can tell "no
// such column" apart from "no employees". Reshape is a pure function of its
// inputs and is idempotent.
func Reshape(tbl types.RosterTable, schema types.SchemaConfig) (types.NormalizedRoster, error) {
	if !tbl.HasColumn(schema.DepartmentColumn) {
		return nil, &types.InvalidSchemaError{Column: schema.DepartmentColumn}
	}

	// Title columns missing from this document's schema are skipped; the
	// vocabulary is a superset of what any one roster uses.
	var titles []string
	for _, title := range schema.TitleColumns {
		if tbl.HasColumn(title) {
			titles = append(titles, title)
		}
	}

	var roster types.NormalizedRoster
	for _, row := range tbl.Rows {
		department := strings.TrimSpace(row[schema.DepartmentColumn])
		for _, title := range titles {
			name := strings.TrimSpace(row[title])
			if name == "" {
				continue
			}
			roster = append(roster, types.NormalizedEntry{
				Department: department,
				Title:      title,
				Name:       name,
			})
		}
	}
	return roster, nil
}
