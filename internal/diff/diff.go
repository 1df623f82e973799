// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package diff joins two normalized roster snapshots on employee identity and
// reports every employee whose department differs between them.
package diff

import (
	"context"

	"github.com/pdiddy/transfer-tracker/internal/identity"
	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// DepartmentNormalizer cleans department strings before the join. Results map
// each input value to its cleaned form; values that failed normalization map
// to themselves. Implemented by normalize.Batcher; tests supply fakes.
type DepartmentNormalizer interface {
	NormalizeAll(ctx context.Context, values []string) map[string]string
}

// Engine computes transfer diffs between roster snapshots.
type Engine struct {
	schema   types.SchemaConfig
	resolver *identity.Resolver

	// Normalizer, when non-nil, is applied once per distinct department value
	// across both snapshots before comparison. Normalization is advisory: it
	// can only ever substitute a value, never abort the diff.
	Normalizer DepartmentNormalizer
}

// New builds an Engine for the given schema.
func New(schema types.SchemaConfig) *Engine {
	return &Engine{
		schema:   schema,
		resolver: identity.NewResolver(schema),
	}
}

// Diff inner-joins prev and curr on folded employee identity and returns a
// TransferRecord for every joined pair whose departments differ. Employees
// present in only one snapshot (joiners and leavers) produce nothing. When an
// identity appears several times within a snapshot, every combination is
// reported; identities spanning more than one department within a single
// snapshot are additionally listed in DiffResult.Ambiguous.
//
// Output order follows prev's iteration order. Department comparison is exact
// string equality after optional normalization.
func (e *Engine) Diff(ctx context.Context, prev, curr types.NormalizedRoster) (types.DiffResult, error) {
	departments := e.normalizedDepartments(ctx, prev, curr)
	dept := func(entry types.NormalizedEntry) string {
		if d, ok := departments[entry.Department]; ok {
			return d
		}
		return entry.Department
	}

	currByKey := make(map[string][]types.NormalizedEntry, len(curr))
	for _, entry := range curr {
		key := identity.FoldName(entry.Name)
		currByKey[key] = append(currByKey[key], entry)
	}

	var result types.DiffResult
	for _, prevEntry := range prev {
		key := identity.FoldName(prevEntry.Name)
		for _, currEntry := range currByKey[key] {
			from, to := dept(prevEntry), dept(currEntry)
			if from == to {
				continue
			}
			result.Transfers = append(result.Transfers, types.TransferRecord{
				Name:           prevEntry.Name,
				PrevDepartment: from,
				CurrDepartment: to,
			})
		}
	}

	result.Ambiguous = ambiguousIdentities(dept, prev, curr)
	return result, nil
}

// DiffTables joins two long-form tables (department, title, name columns,
// possibly under aliased labels) after resolving column aliases. A missing
// identity or department column on either side is a *types.MissingColumnError
// and yields zero transfers.
func (e *Engine) DiffTables(ctx context.Context, prev, curr types.RosterTable) (types.DiffResult, error) {
	prevRoster, err := e.rosterFromTable(prev, "previous")
	if err != nil {
		return types.DiffResult{}, err
	}
	currRoster, err := e.rosterFromTable(curr, "current")
	if err != nil {
		return types.DiffResult{}, err
	}
	return e.Diff(ctx, prevRoster, currRoster)
}

// rosterFromTable converts a long-form table into a NormalizedRoster, mapping
// aliased column labels onto the canonical identity/department/title labels.
func (e *Engine) rosterFromTable(tbl types.RosterTable, side string) (types.NormalizedRoster, error) {
	labels := make(map[string]string, len(tbl.Columns)) // canonical -> actual
	for _, col := range tbl.Columns {
		labels[e.resolver.CanonicalColumn(col)] = col
	}

	var missing []string
	for _, required := range []string{e.schema.IdentityColumn, e.schema.DepartmentColumn} {
		if _, ok := labels[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &types.MissingColumnError{Side: side, Columns: missing}
	}

	nameCol := labels[e.schema.IdentityColumn]
	deptCol := labels[e.schema.DepartmentColumn]
	titleCol, hasTitle := labels[e.schema.TitleColumn]

	var roster types.NormalizedRoster
	for _, row := range tbl.Rows {
		name := row[nameCol]
		if identity.FoldName(name) == "" {
			continue
		}
		entry := types.NormalizedEntry{
			Department: row[deptCol],
			Name:       name,
		}
		if hasTitle {
			entry.Title = row[titleCol]
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// normalizedDepartments runs the optional normalizer over the distinct
// department values of both snapshots. Without a normalizer it returns an
// empty map and values pass through unchanged.
func (e *Engine) normalizedDepartments(ctx context.Context, prev, curr types.NormalizedRoster) map[string]string {
	if e.Normalizer == nil {
		return nil
	}
	seen := make(map[string]bool)
	var distinct []string
	for _, roster := range []types.NormalizedRoster{prev, curr} {
		for _, d := range roster.Departments() {
			if !seen[d] {
				seen[d] = true
				distinct = append(distinct, d)
			}
		}
	}
	if len(distinct) == 0 {
		return nil
	}
	return e.Normalizer.NormalizeAll(ctx, distinct)
}

// ambiguousIdentities returns, in first-occurrence order, identities that map
// to more than one distinct department within a single snapshot. Such rows
// come from duplicate names or concurrent appointments; the documents carry
// no employee ID to tell those apart, so the join reports every combination
// and flags the identity instead of guessing.
func ambiguousIdentities(dept func(types.NormalizedEntry) string, rosters ...types.NormalizedRoster) []string {
	type seenDept map[string]bool
	byKey := make(map[string]seenDept)
	displayName := make(map[string]string)
	var order []string

	for _, roster := range rosters {
		for _, entry := range roster {
			key := identity.FoldName(entry.Name)
			if key == "" {
				continue
			}
			if _, ok := byKey[key]; !ok {
				byKey[key] = make(seenDept)
				displayName[key] = entry.Name
				order = append(order, key)
			}
		}
	}

	// Departments are tracked per snapshot: the same identity in different
	// departments across snapshots is a transfer, not an ambiguity.
	flagged := make(map[string]bool)
	for _, roster := range rosters {
		perSnapshot := make(map[string]seenDept)
		for _, entry := range roster {
			key := identity.FoldName(entry.Name)
			if key == "" {
				continue
			}
			if perSnapshot[key] == nil {
				perSnapshot[key] = make(seenDept)
			}
			perSnapshot[key][dept(entry)] = true
			if len(perSnapshot[key]) > 1 {
				flagged[key] = true
			}
		}
	}

	var out []string
	for _, key := range order {
		if flagged[key] {
			out = append(out, displayName[key])
		}
	}
	return out
}
