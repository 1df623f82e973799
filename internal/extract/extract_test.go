// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// fakeStrategy implements Strategy for testing. It returns a canned table,
// an error, or panics, depending on configuration.
type fakeStrategy struct {
	name  string
	table types.RosterTable
	err   error
	panic bool
	calls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(pdfPath string) (types.RosterTable, error) {
	f.calls++
	if f.panic {
		panic("malformed xref")
	}
	if f.err != nil {
		return types.RosterTable{}, f.err
	}
	return f.table, nil
}

func sampleTable() types.RosterTable {
	return types.RosterTable{
		Columns: []string{"部署", "部長", "職員"},
		Rows: []types.FlatRecord{
			{"部署": "総務課", "部長": "佐藤", "職員": "伊藤"},
		},
	}
}

func TestExtractFile_FirstStrategyWins(t *testing.T) {
	first := &fakeStrategy{name: "grid", table: sampleTable()}
	second := &fakeStrategy{name: "stream", table: sampleTable()}
	e := NewExtractorWith(first, second)

	var log bytes.Buffer
	tbl, err := e.ExtractFile("roster.pdf", &log)
	require.NoError(t, err)

	assert.Equal(t, 1, len(tbl.Rows))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "fallback must not run when the first strategy succeeds")
	assert.Contains(t, log.String(), "extracted:")
}

func TestExtractFile_FallsBackOnEmpty(t *testing.T) {
	first := &fakeStrategy{name: "grid"} // empty table
	second := &fakeStrategy{name: "stream", table: sampleTable()}
	e := NewExtractorWith(first, second)

	var log bytes.Buffer
	tbl, err := e.ExtractFile("roster.pdf", &log)
	require.NoError(t, err)

	assert.False(t, tbl.Empty())
	assert.Equal(t, 1, second.calls)
	assert.Contains(t, log.String(), "empty:")
}

func TestExtractFile_FallsBackOnError(t *testing.T) {
	first := &fakeStrategy{name: "grid", err: errors.New("corrupt stream")}
	second := &fakeStrategy{name: "stream", table: sampleTable()}
	e := NewExtractorWith(first, second)

	var log bytes.Buffer
	tbl, err := e.ExtractFile("roster.pdf", &log)
	require.NoError(t, err)
	assert.False(t, tbl.Empty())
	assert.Contains(t, log.String(), "failed:")
}

func TestExtractFile_AllEmptyReturnsErrNoTable(t *testing.T) {
	e := NewExtractorWith(&fakeStrategy{name: "grid"}, &fakeStrategy{name: "stream"})

	var log bytes.Buffer
	tbl, err := e.ExtractFile("roster.pdf", &log)

	assert.True(t, tbl.Empty())
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestExtractFile_RecoversStrategyPanic(t *testing.T) {
	first := &fakeStrategy{name: "grid", panic: true}
	second := &fakeStrategy{name: "stream", table: sampleTable()}
	e := NewExtractorWith(first, second)

	var log bytes.Buffer
	tbl, err := e.ExtractFile("roster.pdf", &log)
	require.NoError(t, err)

	assert.False(t, tbl.Empty())
	assert.Contains(t, log.String(), "panicked")
}

func TestBuildTable_DropsMismatchedRows(t *testing.T) {
	grids := [][][]string{{
		{"部署", "部長", "課長・主幹", "職員"},
		{"総務課", "佐藤", "鈴木"}, // 3 cells against a 4-column header: dropped
		{"財政課", "伊藤", "高橋", "田中"},
	}}

	tbl := buildTable(grids)

	require.Equal(t, []string{"部署", "部長", "課長・主幹", "職員"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "財政課", tbl.Rows[0]["部署"])
}

func TestBuildTable_TrimsCells(t *testing.T) {
	grids := [][][]string{{
		{" 部署 ", " 部長 "},
		{" 総務課 ", " 佐藤\n"},
	}}

	tbl := buildTable(grids)

	require.Equal(t, []string{"部署", "部長"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "総務課", tbl.Rows[0]["部署"])
	assert.Equal(t, "佐藤", tbl.Rows[0]["部長"])
}

func TestBuildTable_ConcatenatesPagesInOrder(t *testing.T) {
	grids := [][][]string{
		{
			{"部署", "部長"},
			{"総務課", "佐藤"},
		},
		{
			{"部署", "部長"}, // repeated header on page 2 is consumed
			{"財政課", "伊藤"},
		},
	}

	tbl := buildTable(grids)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "総務課", tbl.Rows[0]["部署"])
	assert.Equal(t, "財政課", tbl.Rows[1]["部署"])
}

func TestBuildTable_NoGrids(t *testing.T) {
	tbl := buildTable(nil)
	assert.True(t, tbl.Empty())
	assert.Nil(t, tbl.Columns)
}

func TestExtractReader_StagesBytes(t *testing.T) {
	// The fake strategy ignores the path, so any byte stream will do; this
	// exercises the temp-file staging path.
	e := NewExtractorWith(&fakeStrategy{name: "grid", table: sampleTable()})

	var log bytes.Buffer
	tbl, err := e.ExtractReader(bytes.NewReader([]byte("%PDF-1.7 fake")), &log)
	require.NoError(t, err)
	assert.Equal(t, 1, len(tbl.Rows))
}
