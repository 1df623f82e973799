// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

func sampleTransfers() []types.TransferRecord {
	return []types.TransferRecord{
		{Name: "佐藤 太郎", PrevDepartment: "総務課", CurrDepartment: "財政課"},
		{Name: "Ito", PrevDepartment: "Sales, East", CurrDepartment: "HR"},
	}
}

func TestWriteTransfersCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransfersCSV(&buf, sampleTransfers()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "employee_name,previous_department,current_department", lines[0])
	assert.Equal(t, "佐藤 太郎,総務課,財政課", lines[1])
	assert.Equal(t, `Ito,"Sales, East",HR`, lines[2], "delimiter inside a value is quoted")
}

func TestWriteTransfersCSV_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransfersCSV(&buf, nil))
	assert.Equal(t, "employee_name,previous_department,current_department\n", buf.String())
}

func TestTransfersXLSX_RoundTrips(t *testing.T) {
	data, err := TransfersXLSX(sampleTransfers())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transfers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"employee_name", "previous_department", "current_department"}, rows[0])
	assert.Equal(t, []string{"佐藤 太郎", "総務課", "財政課"}, rows[1])
}

func TestRosterCSV_RoundTrip(t *testing.T) {
	schema := types.DefaultSchema()
	roster := types.NormalizedRoster{
		{Department: "総務課", Title: "部長", Name: "佐藤 太郎"},
		{Department: "財政課", Title: "職員", Name: "伊藤 花子"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRosterCSV(&buf, roster, schema))

	tbl, err := ReadTableCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"部署", "役職", "氏名"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "佐藤 太郎", tbl.Rows[0]["氏名"])
	assert.Equal(t, "財政課", tbl.Rows[1]["部署"])
}

func TestReadTableCSV_RejectsRaggedRows(t *testing.T) {
	_, err := ReadTableCSV(strings.NewReader("a,b,c\n1,2\n"))
	assert.Error(t, err)
}

func TestReadTableCSV_Empty(t *testing.T) {
	tbl, err := ReadTableCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
}

func TestWriteRosterYAML(t *testing.T) {
	roster := types.NormalizedRoster{
		{Department: "総務課", Title: "部長", Name: "佐藤 太郎"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRosterYAML(&buf, roster))

	out := buf.String()
	assert.Contains(t, out, "department: 総務課")
	assert.Contains(t, out, "name: 佐藤 太郎")
}

func TestWriteTransfersJSON(t *testing.T) {
	res := types.DiffResult{
		Transfers: sampleTransfers()[:1],
		Ambiguous: []string{"Sato"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransfersJSON(&buf, res))

	assert.Contains(t, buf.String(), `"employee_name": "佐藤 太郎"`)
	assert.Contains(t, buf.String(), `"ambiguous"`)
}

func TestRenderTransfers(t *testing.T) {
	var buf bytes.Buffer
	RenderTransfers(&buf, types.DiffResult{
		Transfers: sampleTransfers(),
		Ambiguous: []string{"Ito"},
	})

	out := buf.String()
	assert.Contains(t, out, "Employee")
	assert.Contains(t, out, "佐藤 太郎")
	assert.Contains(t, out, `note: "Ito"`)
}

func TestRenderTransfers_NoTransfers(t *testing.T) {
	var buf bytes.Buffer
	RenderTransfers(&buf, types.DiffResult{})
	assert.Contains(t, buf.String(), "No transfers detected.")
}
