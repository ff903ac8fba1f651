package excel

// Sheet names of a network workbook. Only the TPM sheet is required; a
// workbook without one is read from its first sheet.
const (
	SheetTPM   = "tpm"
	SheetCM    = "cm"
	SheetState = "state"
)

// SheetData is a sheet split into its header row and body rows
type SheetData struct {
	Headers []string   // Node labels
	Rows    [][]string // Data rows
}
