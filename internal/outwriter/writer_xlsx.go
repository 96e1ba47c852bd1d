package outwriter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// defaultSheetName is the worksheet every new workbook starts with.
const defaultSheetName = "Sheet1"

// writeXLSX writes each sheet as a worksheet of one workbook, in order.
func writeXLSX(w io.Writer, sheets []sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheetName, s.name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheetRows(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

// writeSheetRows writes the header and rows starting at A1.
func writeSheetRows(f *excelize.File, s sheet) error {
	rows := make([][]string, 0, len(s.rows)+1)
	rows = append(rows, s.header)
	rows = append(rows, s.rows...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, s.name, err)
		}
	}
	return nil
}
