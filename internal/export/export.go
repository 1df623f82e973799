// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders diff results and roster snapshots for the caller:
// CSV and XLSX transfer reports, YAML/JSON roster dumps for inspecting the
// pipeline's intermediate output, and a plain-text table for the terminal.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transfer-tracker/pkg/types"
)

// transferHeader is the column order of every transfer report.
var transferHeader = []string{"employee_name", "previous_department", "current_department"}

// WriteTransfersCSV writes the transfer report as UTF-8 CSV with a header
// row. Values containing the delimiter or quotes are escaped per standard
// CSV quoting.
func WriteTransfersCSV(w io.Writer, transfers []types.TransferRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transferHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range transfers {
		if err := cw.Write([]string{t.Name, t.PrevDepartment, t.CurrDepartment}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// TransfersXLSX renders the transfer report as an XLSX workbook with one
// "Transfers" sheet.
func TransfersXLSX(transfers []types.TransferRecord) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Transfers"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range transferHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for row, t := range transfers {
		for col, v := range []string{t.Name, t.PrevDepartment, t.CurrDepartment} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "C", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTransfersJSON writes the full diff result, ambiguity flags included,
// as indented JSON.
func WriteTransfersJSON(w io.Writer, res types.DiffResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteRosterYAML dumps a normalized roster as YAML.
func WriteRosterYAML(w io.Writer, roster types.NormalizedRoster) error {
	data, err := yaml.Marshal(roster)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteRosterCSV dumps a normalized roster as a long-form CSV table whose
// header uses the schema's canonical labels. The dump round-trips through
// ReadTableCSV back into the diff stage.
func WriteRosterCSV(w io.Writer, roster types.NormalizedRoster, schema types.SchemaConfig) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{schema.DepartmentColumn, schema.TitleColumn, schema.IdentityColumn}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range roster {
		if err := cw.Write([]string{e.Department, e.Title, e.Name}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTableCSV parses a CSV document into a RosterTable, taking the first
// row as the header. Rows whose field count differs from the header are
// rejected by the CSV reader itself.
func ReadTableCSV(r io.Reader) (types.RosterTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return types.RosterTable{}, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return types.RosterTable{}, nil
	}

	var tbl types.RosterTable
	tbl.Columns = records[0]
	for _, rec := range records[1:] {
		row := make(types.FlatRecord, len(tbl.Columns))
		for i, col := range tbl.Columns {
			row[col] = strings.TrimSpace(rec[i])
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// RenderTransfers prints the diff result as an aligned text table, followed
// by a note per ambiguous identity.
func RenderTransfers(w io.Writer, res types.DiffResult) {
	if len(res.Transfers) == 0 {
		fmt.Fprintln(w, "No transfers detected.")
	} else {
		fmt.Fprintf(w, "%-24s  %-28s  %s\n", "Employee", "Previous", "Current")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, t := range res.Transfers {
			fmt.Fprintf(w, "%-24s  %-28s  %s\n", t.Name, t.PrevDepartment, t.CurrDepartment)
		}
	}

	for _, name := range res.Ambiguous {
		fmt.Fprintf(w, "note: %q maps to multiple departments within one snapshot; rows above may be spurious\n", name)
	}
}
