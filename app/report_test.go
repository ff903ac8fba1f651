package app

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"gophi/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func basicSIAReport(t *testing.T) *SIAReport {
	t.Helper()
	report, err := newTestService(t).SIA(context.Background(), AnalysisRequest{Network: "basic"})
	require.NoError(t, err)
	return report
}

// TestRenderFormats verifies each output format of an SIA report
func TestRenderFormats(t *testing.T) {
	report := basicSIAReport(t)

	var text bytes.Buffer
	require.NoError(t, Render(&text, report, FormatText))
	assert.Contains(t, text.String(), "Φ = 2.3125")
	assert.Contains(t, text.String(), "partitioned: 1 concepts")

	var md bytes.Buffer
	require.NoError(t, Render(&md, report, FormatMarkdown))
	assert.Contains(t, md.String(), "# SIA (0, 1, 2)")
	assert.Contains(t, md.String(), "| mechanism | labels |")
	assert.Contains(t, md.String(), "## Partitioned concepts")

	var page bytes.Buffer
	require.NoError(t, Render(&page, report, FormatHTML))
	assert.Contains(t, page.String(), "<table>")
	assert.Contains(t, page.String(), "<title>")

	var out bytes.Buffer
	require.NoError(t, Render(&out, report, FormatJSON))
	var decoded SIAReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, report.Phi, decoded.Phi)
	assert.Equal(t, report.Concepts, decoded.Concepts)

	err := Render(&out, report, "pdf")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

// TestComplexesMarkdown verifies one table row per subsystem
func TestComplexesMarkdown(t *testing.T) {
	report, err := newTestService(t).Complexes(context.Background(), ComplexesRequest{
		AnalysisRequest: AnalysisRequest{Network: "basic"},
		All:             true,
	})
	require.NoError(t, err)

	md := report.Markdown()
	assert.Contains(t, md, "# Complexes (all)")
	assert.Contains(t, md, `| (0, 1, 2) | 2.3125 | (1, 2)\|(0,) |`)
	assert.Contains(t, report.Text(), "5 subsystems (all)")
}

// TestWriteXLSX verifies the workbook has a summary and a concept sheet
func TestWriteXLSX(t *testing.T) {
	report, err := newTestService(t).Complexes(context.Background(), ComplexesRequest{
		AnalysisRequest: AnalysisRequest{Network: "basic"},
		All:             true,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "complexes.xlsx")
	require.NoError(t, WriteXLSX(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Complexes", "Concepts"}, f.GetSheetList())

	rows, err := f.GetRows("Complexes")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "nodes", rows[0][0])
	assert.Equal(t, "(0, 1, 2)", rows[1][0])
	assert.Equal(t, "2.3125", rows[1][2])

	concepts, err := f.GetRows("Concepts")
	require.NoError(t, err)
	assert.Greater(t, len(concepts), 1)
	assert.Equal(t, "mechanism", concepts[0][1])
}

// TestCutsReport verifies cut listings render in every layout
func TestCutsReport(t *testing.T) {
	report, err := newTestService(t).Cuts(AnalysisRequest{Network: "basic"})
	require.NoError(t, err)

	assert.Contains(t, report.Markdown(), "6 cuts (3.0_STYLE)")
	sheets := report.Sheets()
	require.Len(t, sheets, 1)
	assert.Len(t, sheets[0].Rows, 6)
}
