package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/umardevX/ems-console/internal/employee"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const sheetName = "Employees"

// Export writes the whole list, not just the current page, in format
func Export(w io.Writer, format string, list []employee.Employee) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return exportCSV(w, list)
	case FormatXLSX:
		return exportXLSX(w, list)
	default:
		return fmt.Errorf("unsupported export format %q (use csv or xlsx)", format)
	}
}

func header() []string {
	out := []string{"ID"}
	for _, col := range Columns {
		out = append(out, col.Header)
	}
	return out
}

func record(e employee.Employee) []string {
	out := []string{strconv.FormatInt(e.EmployeeID, 10)}
	for _, col := range Columns {
		out = append(out, col.Value(e))
	}
	return out
}

func exportCSV(w io.Writer, list []employee.Employee) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return err
	}
	for _, e := range list {
		if err := cw.Write(record(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportXLSX(w io.Writer, list []employee.Employee) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, header())
	for _, e := range list {
		rows = append(rows, record(e))
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			var value any = v
			if r > 0 && c == 0 {
				value = list[r-1].EmployeeID
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
