// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// InvalidSchemaError reports that a required column is absent from an
// extracted table. It distinguishes "no such column" from "no employees";
// reshaping fails fast with this error instead of producing an empty roster.
type InvalidSchemaError struct {
	Column string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid schema: required column %q not found", e.Column)
}

// MissingColumnError reports that the identity or department column is absent
// from one side of a diff after alias resolution. Side is "previous" or
// "current".
type MissingColumnError struct {
	Side    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s roster is missing required column(s): %s",
		e.Side, strings.Join(e.Columns, ", "))
}
