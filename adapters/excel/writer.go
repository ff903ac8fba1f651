package excel

import (
	"fmt"

	"gophi/domain/network"

	"github.com/xuri/excelize/v2"
)

// WriteSpec saves spec as a network workbook readable by DataReader
func WriteSpec(path string, spec network.Spec) error {
	if len(spec.TPM) == 0 {
		return fmt.Errorf("network has no TPM")
	}
	n := len(spec.TPM[0])
	headers := spec.Labels
	if len(headers) != n {
		headers = make([]string, n)
		for i := range headers {
			headers[i] = fmt.Sprintf("n%d", i)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTPM); err != nil {
		return err
	}
	if err := writeSheet(f, SheetTPM, headers, spec.TPM); err != nil {
		return err
	}
	if len(spec.CM) > 0 {
		if _, err := f.NewSheet(SheetCM); err != nil {
			return err
		}
		if err := writeSheet(f, SheetCM, headers, spec.CM); err != nil {
			return err
		}
	}
	if len(spec.State) > 0 {
		if _, err := f.NewSheet(SheetState); err != nil {
			return err
		}
		if err := writeSheet(f, SheetState, headers, [][]int{spec.State}); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeSheet[T int | float64](f *excelize.File, sheet string, headers []string, rows [][]T) error {
	// Header row
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	// Data rows
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
