package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcharvet/sav-coverage/internal/engine"
)

// DecisionDocument carries a decision plus the display names the report
// needs; the engine result itself only holds ids.
type DecisionDocument struct {
	ContractReference string
	AppendixName      string
	AppendixCode      string
	ProductName       string
	EventDate         time.Time
	Decision          engine.Decision
}

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a one-page claim decision report.
func (g *Generator) Generate(doc DecisionDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 15)
	pdf.CellFormat(0, 10, "Warranty Coverage Decision", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	g.addSection(pdf, "Claim")
	g.addRow(pdf, "Contract", doc.ContractReference)
	if doc.AppendixName != "" {
		g.addRow(pdf, "Appendix", fmt.Sprintf("%s (%s)", doc.AppendixName, doc.AppendixCode))
	}
	g.addRow(pdf, "Product", doc.ProductName)
	g.addRow(pdf, "Event date", formatDate(doc.EventDate))
	pdf.Ln(3)

	decision := doc.Decision
	g.addSection(pdf, "Verdict")
	g.addRow(pdf, "Eligible", formatBool(decision.Eligible))
	g.addRow(pdf, "In warranty", formatOptionalBool(decision.InWarranty))
	if decision.WarrantyEndDate != nil {
		g.addRow(pdf, "Warranty end date", formatDate(*decision.WarrantyEndDate))
	}
	pdf.Ln(3)

	g.addSection(pdf, "Allowed resolutions")
	g.addTags(pdf, resolutionStrings(decision.AllowedResolutions))
	pdf.Ln(3)

	g.addSection(pdf, "Required inputs")
	g.addTags(pdf, decision.RequiredInputs)
	pdf.Ln(3)

	g.addSection(pdf, "Reason codes")
	g.addTags(pdf, reasonStrings(decision.ReasonCodes))

	if decision.ResolvedLineID != nil {
		pdf.Ln(5)
		pdf.SetFont(g.fontName, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Line %s", decision.ResolvedLineID), "", 1, "L", false, 0, "")
		if decision.ResolvedAppendixID != nil {
			pdf.CellFormat(0, 5, fmt.Sprintf("Appendix %s", decision.ResolvedAppendixID), "", 1, "L", false, 0, "")
		}
		if decision.ResolvedContractID != nil {
			pdf.CellFormat(0, 5, fmt.Sprintf("Contract %s", decision.ResolvedContractID), "", 1, "L", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) addSection(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
}

func (g *Generator) addRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *Generator) addTags(pdf *gofpdf.Fpdf, values []string) {
	if len(values) == 0 {
		pdf.CellFormat(0, 6, "none", "", 1, "L", false, 0, "")
		return
	}
	for _, value := range values {
		pdf.CellFormat(0, 6, "- "+value, "", 1, "L", false, 0, "")
	}
}

func resolutionStrings(resolutions []engine.Resolution) []string {
	result := make([]string, 0, len(resolutions))
	for _, resolution := range resolutions {
		result = append(result, string(resolution))
	}
	return result
}

func reasonStrings(codes []engine.ReasonCode) []string {
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		result = append(result, string(code))
	}
	return result
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatOptionalBool(v *bool) string {
	if v == nil {
		return "not determined"
	}
	return formatBool(*v)
}
