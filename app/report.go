package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gophi/domain/core"
	"gophi/domain/partition"
	"gophi/internal/errors"
	"gophi/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// Output formats understood by Render
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Report is a rendered analysis result
type Report interface {
	Title() string
	Text() string
	Markdown() string
	Sheets() []Sheet
}

// Sheet is one worksheet of an XLSX export
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// ConceptReport summarizes one concept of a cause-effect structure
type ConceptReport struct {
	Mechanism     []int   `json:"mechanism"`
	Labels        string  `json:"labels"`
	Phi           float64 `json:"phi"`
	CausePurview  []int   `json:"cause_purview"`
	CausePhi      float64 `json:"cause_phi"`
	EffectPurview []int   `json:"effect_purview"`
	EffectPhi     float64 `json:"effect_phi"`
}

// SIAReport is the outcome of a system irreducibility analysis
type SIAReport struct {
	RunID               string          `json:"run_id,omitempty"`
	Network             string          `json:"network,omitempty"`
	Nodes               []int           `json:"nodes"`
	State               []int           `json:"state"`
	Phi                 float64         `json:"phi"`
	Cut                 string          `json:"cut"`
	Concepts            []ConceptReport `json:"concepts"`
	PartitionedConcepts []ConceptReport `json:"partitioned_concepts"`
	SmallPhiSum         float64         `json:"small_phi_sum"`
	ElapsedMs           float64         `json:"elapsed_ms"`
}

// CESReport is the cause-effect structure of a subsystem
type CESReport struct {
	Network        string          `json:"network,omitempty"`
	Nodes          []int           `json:"nodes"`
	State          []int           `json:"state"`
	Concepts       []ConceptReport `json:"concepts"`
	SmallPhiSum    float64         `json:"small_phi_sum"`
	ConceptualInfo float64         `json:"conceptual_info"`
}

// ComplexesReport lists analyses of candidate subsystems of a network
type ComplexesReport struct {
	Network   string      `json:"network,omitempty"`
	Mode      string      `json:"mode"`
	Complexes []SIAReport `json:"complexes"`
}

// CutsReport lists the system cuts the SIA search would evaluate
type CutsReport struct {
	Network string   `json:"network,omitempty"`
	Nodes   []int    `json:"nodes"`
	Style   string   `json:"style"`
	Cuts    []string `json:"cuts"`
}

// NewConceptReports converts a cause-effect structure
func NewConceptReports(ces models.CES, label func(int) string) []ConceptReport {
	out := make([]ConceptReport, 0, len(ces))
	for _, c := range ces {
		out = append(out, ConceptReport{
			Mechanism:     c.Mechanism,
			Labels:        labelNodes(c.Mechanism, label),
			Phi:           c.Phi(),
			CausePurview:  c.Cause.Purview,
			CausePhi:      c.Cause.Phi,
			EffectPurview: c.Effect.Purview,
			EffectPhi:     c.Effect.Phi,
		})
	}
	return out
}

// NewSIAReport converts an analysis
func NewSIAReport(name string, sia *models.SIA) SIAReport {
	r := SIAReport{
		RunID:       sia.RunID.String(),
		Network:     name,
		Nodes:       []int{},
		State:       []int{},
		Phi:         sia.Phi,
		Cut:         partition.CutString(sia.Cut),
		SmallPhiSum: sia.CES.PhiSum(),
		ElapsedMs:   float64(sia.Elapsed.Duration().Microseconds()) / 1000,
	}
	label := strconv.Itoa
	if sia.Subsystem != nil {
		r.Nodes = sia.Subsystem.NodeIndices()
		r.State = sia.Subsystem.State()
		label = sia.Subsystem.Network().Label
	}
	r.Concepts = NewConceptReports(sia.CES, label)
	r.PartitionedConcepts = NewConceptReports(sia.PartitionedCES, label)
	return r
}

func labelNodes(nodes []int, label func(int) string) string {
	if len(nodes) == 0 {
		return ""
	}
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = label(n)
	}
	return strings.Join(names, "")
}

func (r *SIAReport) Title() string {
	return fmt.Sprintf("SIA %s", core.FormatNodes(r.Nodes))
}

func (r *SIAReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Φ = %g  cut %s  subsystem %s  state %v\n", r.Phi, r.Cut, core.FormatNodes(r.Nodes), r.State)
	fmt.Fprintf(&b, "%d concepts, Σφ = %g\n", len(r.Concepts), r.SmallPhiSum)
	writeConceptLines(&b, r.Concepts)
	if len(r.PartitionedConcepts) > 0 {
		fmt.Fprintf(&b, "partitioned: %d concepts\n", len(r.PartitionedConcepts))
		writeConceptLines(&b, r.PartitionedConcepts)
	}
	return b.String()
}

func (r *SIAReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	b.WriteString("| Φ | cut | state | concepts | Σφ |\n|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %g | %s | %v | %d | %g |\n\n", r.Phi, escapeCell(r.Cut), r.State, len(r.Concepts), r.SmallPhiSum)
	b.WriteString("## Concepts\n\n")
	writeConceptTable(&b, r.Concepts)
	if len(r.PartitionedConcepts) > 0 {
		b.WriteString("\n## Partitioned concepts\n\n")
		writeConceptTable(&b, r.PartitionedConcepts)
	}
	return b.String()
}

func (r *SIAReport) Sheets() []Sheet {
	return []Sheet{
		{
			Name:    "SIA",
			Headers: []string{"nodes", "state", "phi", "cut", "concepts", "small_phi_sum", "run_id"},
			Rows: [][]interface{}{{
				core.FormatNodes(r.Nodes), fmt.Sprint(r.State), r.Phi, r.Cut, len(r.Concepts), r.SmallPhiSum, r.RunID,
			}},
		},
		conceptSheet("Concepts", []SIAReport{*r}),
	}
}

func (r *CESReport) Title() string {
	return fmt.Sprintf("CES %s", core.FormatNodes(r.Nodes))
}

func (r *CESReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d concepts over %s, Σφ = %g, conceptual information = %g\n",
		len(r.Concepts), core.FormatNodes(r.Nodes), r.SmallPhiSum, r.ConceptualInfo)
	writeConceptLines(&b, r.Concepts)
	return b.String()
}

func (r *CESReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	fmt.Fprintf(&b, "Σφ = %g, conceptual information = %g\n\n", r.SmallPhiSum, r.ConceptualInfo)
	writeConceptTable(&b, r.Concepts)
	return b.String()
}

func (r *CESReport) Sheets() []Sheet {
	return []Sheet{conceptSheet("Concepts", []SIAReport{{Nodes: r.Nodes, Concepts: r.Concepts}})}
}

func (r *ComplexesReport) Title() string {
	return fmt.Sprintf("Complexes (%s)", r.Mode)
}

func (r *ComplexesReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d subsystems (%s)\n", len(r.Complexes), r.Mode)
	for _, c := range r.Complexes {
		fmt.Fprintf(&b, "  %-12s Φ = %-10g cut %s\n", core.FormatNodes(c.Nodes), c.Phi, c.Cut)
	}
	return b.String()
}

func (r *ComplexesReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title())
	b.WriteString("| subsystem | Φ | cut | concepts | Σφ |\n|---|---|---|---|---|\n")
	for _, c := range r.Complexes {
		fmt.Fprintf(&b, "| %s | %g | %s | %d | %g |\n", core.FormatNodes(c.Nodes), c.Phi, escapeCell(c.Cut), len(c.Concepts), c.SmallPhiSum)
	}
	return b.String()
}

func (r *ComplexesReport) Sheets() []Sheet {
	rows := make([][]interface{}, 0, len(r.Complexes))
	for _, c := range r.Complexes {
		rows = append(rows, []interface{}{core.FormatNodes(c.Nodes), fmt.Sprint(c.State), c.Phi, c.Cut, len(c.Concepts), c.SmallPhiSum})
	}
	return []Sheet{
		{Name: "Complexes", Headers: []string{"nodes", "state", "phi", "cut", "concepts", "small_phi_sum"}, Rows: rows},
		conceptSheet("Concepts", r.Complexes),
	}
}

func (r *CutsReport) Title() string {
	return fmt.Sprintf("Cuts of %s", core.FormatNodes(r.Nodes))
}

func (r *CutsReport) Text() string {
	return strings.Join(r.Cuts, "\n") + "\n"
}

func (r *CutsReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%d cuts (%s)\n\n| # | cut |\n|---|---|\n", r.Title(), len(r.Cuts), r.Style)
	for i, c := range r.Cuts {
		fmt.Fprintf(&b, "| %d | %s |\n", i+1, escapeCell(c))
	}
	return b.String()
}

func (r *CutsReport) Sheets() []Sheet {
	rows := make([][]interface{}, len(r.Cuts))
	for i, c := range r.Cuts {
		rows[i] = []interface{}{i + 1, c}
	}
	return []Sheet{{Name: "Cuts", Headers: []string{"index", "cut"}, Rows: rows}}
}

func writeConceptLines(b *strings.Builder, concepts []ConceptReport) {
	for _, c := range concepts {
		fmt.Fprintf(b, "  %-10s φ = %-10g cause %s (%g)  effect %s (%g)\n", core.FormatNodes(c.Mechanism), c.Phi,
			core.FormatNodes(c.CausePurview), c.CausePhi, core.FormatNodes(c.EffectPurview), c.EffectPhi)
	}
}

func writeConceptTable(b *strings.Builder, concepts []ConceptReport) {
	b.WriteString("| mechanism | labels | φ | cause purview | φ cause | effect purview | φ effect |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range concepts {
		fmt.Fprintf(b, "| %s | %s | %g | %s | %g | %s | %g |\n", core.FormatNodes(c.Mechanism), c.Labels, c.Phi,
			core.FormatNodes(c.CausePurview), c.CausePhi, core.FormatNodes(c.EffectPurview), c.EffectPhi)
	}
}

// escapeCell keeps cut separators from splitting markdown table cells
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func conceptSheet(name string, sias []SIAReport) Sheet {
	s := Sheet{
		Name:    name,
		Headers: []string{"subsystem", "mechanism", "labels", "phi", "cause_purview", "cause_phi", "effect_purview", "effect_phi"},
	}
	for _, sia := range sias {
		for _, c := range sia.Concepts {
			s.Rows = append(s.Rows, []interface{}{
				core.FormatNodes(sia.Nodes), core.FormatNodes(c.Mechanism), c.Labels, c.Phi,
				core.FormatNodes(c.CausePurview), c.CausePhi, core.FormatNodes(c.EffectPurview), c.EffectPhi,
			})
		}
	}
	return s
}

// RenderHTML converts a report's markdown into a standalone HTML page
func RenderHTML(r Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Title(),
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// Render writes r to w in format
func Render(w io.Writer, r Report, format string) error {
	var err error
	switch format {
	case FormatText, "":
		_, err = io.WriteString(w, r.Text())
	case FormatMarkdown:
		_, err = io.WriteString(w, r.Markdown())
	case FormatHTML:
		_, err = w.Write(RenderHTML(r))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown format %q", format), nil)
	}
	return err
}

// WriteXLSX saves a report's sheets as a workbook
func WriteXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range r.Sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}

		// Header row
		for c, h := range sheet.Headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
				return err
			}
		}

		// Data rows
		for i, row := range sheet.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
				if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save workbook %s", path)
	}
	return nil
}
