package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader reads networks from Excel workbooks and CSV files. The TPM is
// laid out state-by-node: a header row of node labels, then one row per
// previous state in little-endian order.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// IsSpreadsheet reports whether path names a file this package reads
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ReadSpec reads the network spec stored in the file
func (r *DataReader) ReadSpec() (network.Spec, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return network.Spec{}, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		spec network.Spec
		err  error
	)
	switch r.fileType {
	case "csv":
		spec, err = r.readCSVSpec()
	default:
		spec, err = r.readExcelSpec()
	}
	if err != nil {
		return network.Spec{}, err
	}
	spec.Name = strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	return spec, nil
}

// readExcelSpec reads the tpm sheet and the optional cm and state sheets
func (r *DataReader) readExcelSpec() (network.Spec, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return network.Spec{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	tpmSheet := SheetTPM
	if !hasSheet(f, SheetTPM) {
		tpmSheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(tpmSheet)
	if err != nil {
		return network.Spec{}, fmt.Errorf("failed to read sheet %s: %w", tpmSheet, err)
	}
	spec, err := tpmFromRows(rows)
	if err != nil {
		return network.Spec{}, err
	}

	if hasSheet(f, SheetCM) {
		rows, err := f.GetRows(SheetCM)
		if err != nil {
			return network.Spec{}, fmt.Errorf("failed to read sheet %s: %w", SheetCM, err)
		}
		data, err := processRows(rows)
		if err != nil {
			return network.Spec{}, core.NewInvalidCMError(err.Error())
		}
		if spec.CM, err = parseIntRows(data.Rows); err != nil {
			return network.Spec{}, core.NewInvalidCMError(err.Error())
		}
	}

	if hasSheet(f, SheetState) {
		rows, err := f.GetRows(SheetState)
		if err != nil {
			return network.Spec{}, fmt.Errorf("failed to read sheet %s: %w", SheetState, err)
		}
		data, err := processRows(rows)
		if err != nil {
			return network.Spec{}, fmt.Errorf("%w: %v", core.ErrInvalidState, err)
		}
		state, err := parseIntRows(data.Rows[:1])
		if err != nil {
			return network.Spec{}, fmt.Errorf("%w: %v", core.ErrInvalidState, err)
		}
		spec.State = state[0]
	}

	r.logger.Debug("%s read in %s (%d nodes)", r.filePath, time.Since(startTime).Round(time.Microsecond), len(spec.Labels))
	return spec, nil
}

// readCSVSpec reads a TPM from CSV. State and connectivity must come from
// elsewhere.
func (r *DataReader) readCSVSpec() (network.Spec, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return network.Spec{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return network.Spec{}, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return tpmFromRows(rows)
}

func tpmFromRows(rows [][]string) (network.Spec, error) {
	data, err := processRows(rows)
	if err != nil {
		return network.Spec{}, core.NewInvalidTPMError(err.Error())
	}
	tpm, err := parseFloatRows(data.Rows)
	if err != nil {
		return network.Spec{}, core.NewInvalidTPMError(err.Error())
	}
	return network.Spec{Labels: data.Headers, TPM: tpm}, nil
}

// processRows splits raw rows into header and trimmed body rows
func processRows(rows [][]string) (*SheetData, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	data := &SheetData{Headers: headers}
	for _, row := range rows[1:] {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, strings.TrimSpace(cell))
		}
		data.Rows = append(data.Rows, cells)
	}
	return data, nil
}

func parseFloatRows(rows [][]string) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("cell %s is not a number: %q", cellName(j, i+2), cell)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

func parseIntRows(rows [][]string) ([][]int, error) {
	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(row))
		for j, cell := range row {
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("cell %s is not an integer: %q", cellName(j, i+2), cell)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// cellName converts a 0-based column and 1-based row to an A1 reference
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col+1)
	}
	return name
}

func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx != -1
}
