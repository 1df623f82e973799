// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types and per-stage configuration shared
// across the transfer-tracker pipeline.
package types

// FlatRecord maps a column label to the trimmed cell text of one table row.
// Every record produced by a single extraction carries exactly the labels of
// the header row used to build it.
type FlatRecord map[string]string

// RosterTable is an ordered sequence of records sharing one column schema,
// extracted from a single roster snapshot PDF. Tables found on multiple pages
// are concatenated in page order.
type RosterTable struct {
	Columns []string
	Rows    []FlatRecord
}

// Empty reports whether the table holds no data rows.
func (t RosterTable) Empty() bool {
	return len(t.Rows) == 0
}

// HasColumn reports whether the table schema contains the given label.
func (t RosterTable) HasColumn(label string) bool {
	for _, c := range t.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// NormalizedEntry is one (department, title, employee) triple produced by
// flattening the title columns of a RosterTable. Name is never empty after
// trimming; cells that are empty mean "no one holds this title here" and
// produce no entry.
type NormalizedEntry struct {
	Department string `json:"department" yaml:"department"`
	Title      string `json:"title" yaml:"title"`
	Name       string `json:"name" yaml:"name"`
}

// NormalizedRoster holds one snapshot's entries in insertion order (row-major,
// then title-column order). Order carries no meaning downstream; the diff
// stage keys entries by employee identity.
type NormalizedRoster []NormalizedEntry

// Departments returns the distinct department values in first-occurrence order.
func (r NormalizedRoster) Departments() []string {
	seen := make(map[string]bool, len(r))
	var out []string
	for _, e := range r {
		if !seen[e.Department] {
			seen[e.Department] = true
			out = append(out, e.Department)
		}
	}
	return out
}

// TransferRecord reports one employee whose recorded department differs
// between the previous and current snapshots.
type TransferRecord struct {
	Name           string `json:"employee_name" yaml:"employee_name"`
	PrevDepartment string `json:"previous_department" yaml:"previous_department"`
	CurrDepartment string `json:"current_department" yaml:"current_department"`
}

// DiffResult is the outcome of joining two roster snapshots.
type DiffResult struct {
	// Transfers lists department changes in previous-roster iteration order.
	// When an identity appears multiple times within a snapshot, every
	// combination produced by the join is reported as a candidate row.
	Transfers []TransferRecord `json:"transfers" yaml:"transfers"`

	// Ambiguous lists identities that map to more than one distinct
	// department within a single snapshot (duplicate names or concurrent
	// appointments). Entries in Transfers involving these identities may be
	// spurious; the underlying documents carry no stronger identifier to
	// disambiguate with.
	Ambiguous []string `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`
}
