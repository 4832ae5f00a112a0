package report

import (
	"github.com/xuri/excelize/v2"

	"github.com/edustar/attendance-register/internal/register"
)

// SheetName is the single worksheet holding the export.
const SheetName = "Attendance Data"

// Excel renders the selection as an xlsx workbook with one sheet, the shared
// header row, and one row per record in selection order.
func Excel(records []register.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A1", &Headers); err != nil {
		return nil, err
	}
	for i, row := range Rows(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
