// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package diff

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

func testSchema() types.SchemaConfig {
	return types.SchemaConfig{
		DepartmentColumn: "Dept",
		IdentityColumn:   "Name",
		TitleColumn:      "Title",
		TitleColumns:     []string{"Manager", "Staff"},
		ColumnAliases: map[string]string{
			"full name": "Name",
		},
	}
}

func roster(pairs ...[2]string) types.NormalizedRoster {
	var r types.NormalizedRoster
	for _, p := range pairs {
		r = append(r, types.NormalizedEntry{Name: p[0], Department: p[1]})
	}
	return r
}

func TestDiff_ReportsDepartmentChange(t *testing.T) {
	e := New(testSchema())
	prev := roster([2]string{"Sato", "Finance"}, [2]string{"Ito", "Sales"})
	curr := roster([2]string{"Sato", "HR"}, [2]string{"Ito", "Sales"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)

	require.Len(t, res.Transfers, 1)
	assert.Equal(t, types.TransferRecord{Name: "Sato", PrevDepartment: "Finance", CurrDepartment: "HR"}, res.Transfers[0])
	assert.Empty(t, res.Ambiguous)
}

func TestDiff_OmitsLeaversAndJoiners(t *testing.T) {
	e := New(testSchema())
	prev := roster([2]string{"Sato", "Finance"})
	curr := roster([2]string{"Kato", "Sales"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	assert.Empty(t, res.Transfers)
}

func TestDiff_NoOpWhenIdentical(t *testing.T) {
	e := New(testSchema())
	prev := roster([2]string{"Sato", "Finance"}, [2]string{"Ito", "Sales"})
	curr := roster([2]string{"Ito", "Sales"}, [2]string{"Sato", "Finance"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	assert.Empty(t, res.Transfers)
}

func TestDiff_SymmetrySwapsDirections(t *testing.T) {
	e := New(testSchema())
	prev := roster([2]string{"Sato", "Finance"}, [2]string{"Abe", "HR"}, [2]string{"Ito", "Sales"})
	curr := roster([2]string{"Sato", "HR"}, [2]string{"Abe", "Finance"}, [2]string{"Ito", "Sales"})

	forward, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	backward, err := e.Diff(context.Background(), curr, prev)
	require.NoError(t, err)

	require.Equal(t, len(forward.Transfers), len(backward.Transfers))

	names := func(recs []types.TransferRecord) map[string]bool {
		out := make(map[string]bool)
		for _, r := range recs {
			out[r.Name] = true
		}
		return out
	}
	assert.Equal(t, names(forward.Transfers), names(backward.Transfers))

	byName := make(map[string]types.TransferRecord)
	for _, r := range backward.Transfers {
		byName[r.Name] = r
	}
	for _, f := range forward.Transfers {
		b := byName[f.Name]
		assert.Equal(t, f.PrevDepartment, b.CurrDepartment)
		assert.Equal(t, f.CurrDepartment, b.PrevDepartment)
	}
}

func TestDiff_MatchesNameVariants(t *testing.T) {
	// The same employee padded with an ideographic space in one snapshot.
	e := New(testSchema())
	prev := roster([2]string{"佐藤　太郎", "総務課"})
	curr := roster([2]string{"佐藤 太郎", "財政課"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	require.Len(t, res.Transfers, 1)
	assert.Equal(t, "総務課", res.Transfers[0].PrevDepartment)
	assert.Equal(t, "財政課", res.Transfers[0].CurrDepartment)
}

func TestDiff_DuplicateIdentityCrossProduct(t *testing.T) {
	// Two distinct people named Sato in prev, one in curr: both join rows are
	// reported as candidates and the identity is flagged.
	e := New(testSchema())
	prev := roster([2]string{"Sato", "Finance"}, [2]string{"Sato", "Sales"})
	curr := roster([2]string{"Sato", "HR"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)

	require.Len(t, res.Transfers, 2)
	assert.Equal(t, "Finance", res.Transfers[0].PrevDepartment)
	assert.Equal(t, "Sales", res.Transfers[1].PrevDepartment)
	assert.Equal(t, []string{"Sato"}, res.Ambiguous)
}

func TestDiff_SameDepartmentDuplicatesNotAmbiguous(t *testing.T) {
	// One person holding two titles in the same department is not ambiguous.
	e := New(testSchema())
	prev := types.NormalizedRoster{
		{Name: "Sato", Department: "Finance", Title: "Manager"},
		{Name: "Sato", Department: "Finance", Title: "Staff"},
	}
	curr := roster([2]string{"Sato", "Finance"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	assert.Empty(t, res.Transfers)
	assert.Empty(t, res.Ambiguous)
}

// upperNormalizer fakes the department normalizer by upper-casing values.
type upperNormalizer struct{ calls [][]string }

func (u *upperNormalizer) NormalizeAll(_ context.Context, values []string) map[string]string {
	u.calls = append(u.calls, values)
	out := make(map[string]string, len(values))
	for _, v := range values {
		out[v] = strings.ToUpper(v)
	}
	return out
}

func TestDiff_NormalizerAppliedBeforeComparison(t *testing.T) {
	e := New(testSchema())
	n := &upperNormalizer{}
	e.Normalizer = n

	// Same department modulo case: normalization collapses them, no transfer.
	prev := roster([2]string{"Sato", "finance"})
	curr := roster([2]string{"Sato", "Finance"})

	res, err := e.Diff(context.Background(), prev, curr)
	require.NoError(t, err)
	assert.Empty(t, res.Transfers)

	// Called once with the distinct values of both snapshots.
	require.Len(t, n.calls, 1)
	assert.ElementsMatch(t, []string{"finance", "Finance"}, n.calls[0])
}

func TestDiffTables_JoinsOnAliasedColumns(t *testing.T) {
	e := New(testSchema())
	prev := types.RosterTable{
		Columns: []string{"full name", "Dept"},
		Rows: []types.FlatRecord{
			{"full name": "Sato", "Dept": "Finance"},
		},
	}
	curr := types.RosterTable{
		Columns: []string{"Name", "Dept"},
		Rows: []types.FlatRecord{
			{"Name": "Sato", "Dept": "HR"},
		},
	}

	res, err := e.DiffTables(context.Background(), prev, curr)
	require.NoError(t, err)
	require.Len(t, res.Transfers, 1)
	assert.Equal(t, "HR", res.Transfers[0].CurrDepartment)
}

func TestDiffTables_MissingDepartmentColumn(t *testing.T) {
	e := New(testSchema())
	prev := types.RosterTable{
		Columns: []string{"Name"},
		Rows:    []types.FlatRecord{{"Name": "Sato"}},
	}
	curr := types.RosterTable{
		Columns: []string{"Name", "Dept"},
		Rows:    []types.FlatRecord{{"Name": "Sato", "Dept": "HR"}},
	}

	res, err := e.DiffTables(context.Background(), prev, curr)

	var missing *types.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "previous", missing.Side)
	assert.Equal(t, []string{"Dept"}, missing.Columns)
	assert.Empty(t, res.Transfers)
}

func TestDiffTables_SkipsBlankNames(t *testing.T) {
	e := New(testSchema())
	tbl := types.RosterTable{
		Columns: []string{"Name", "Dept"},
		Rows: []types.FlatRecord{
			{"Name": "  ", "Dept": "Finance"},
			{"Name": "Sato", "Dept": "Finance"},
		},
	}

	res, err := e.DiffTables(context.Background(), tbl, tbl)
	require.NoError(t, err)
	assert.Empty(t, res.Transfers)
}
