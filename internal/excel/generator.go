package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/lcharvet/sav-coverage/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the hierarchy as a workbook with one sheet per level,
// the same tables the management screens show.
func (g *Generator) Generate(portfolio model.Portfolio) ([]byte, error) {
	file := excelize.NewFile()

	contractsSheet := "Contracts"
	file.SetSheetName("Sheet1", contractsSheet)
	if err := g.writeContracts(file, contractsSheet, portfolio.Contracts); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet("Appendices"); err != nil {
		return nil, err
	}
	if err := g.writeAppendices(file, "Appendices", portfolio.Appendices); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet("Lines"); err != nil {
		return nil, err
	}
	if err := g.writeLines(file, "Lines", portfolio); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet("Products"); err != nil {
		return nil, err
	}
	if err := g.writeProducts(file, "Products", portfolio.Products); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeContracts(file *excelize.File, sheet string, contracts []model.Contract) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"ID", "Client", "Reference", "Status", "Start", "End", "Rate %", "Billing base", "Currency", "Notes"}
	for i, header := range headers {
		set(cellRef(i, 1), header)
	}

	for rowIdx, contract := range contracts {
		row := rowIdx + 2
		set(cellRef(0, row), contract.ID.String())
		set(cellRef(1, row), contract.ClientID.String())
		set(cellRef(2, row), contract.Reference)
		set(cellRef(3, row), string(contract.Status))
		set(cellRef(4, row), formatDate(contract.StartDate))
		set(cellRef(5, row), formatDate(contract.EndDate))
		set(cellRef(6, row), contract.BillingRatePercent)
		set(cellRef(7, row), contract.BillingBase)
		set(cellRef(8, row), contract.Currency)
		set(cellRef(9, row), contract.Notes)
	}

	_ = file.SetColWidth(sheet, "A", "B", 38)
	_ = file.SetColWidth(sheet, "C", "F", 14)
	_ = file.SetColWidth(sheet, "J", "J", 40)
	return nil
}

func (g *Generator) writeAppendices(file *excelize.File, sheet string, appendices []model.Appendix) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"ID", "Contract", "Name", "Code", "Status", "Start", "End", "Description"}
	for i, header := range headers {
		set(cellRef(i, 1), header)
	}

	for rowIdx, appendix := range appendices {
		row := rowIdx + 2
		set(cellRef(0, row), appendix.ID.String())
		set(cellRef(1, row), appendix.ContractID.String())
		set(cellRef(2, row), appendix.Name)
		set(cellRef(3, row), appendix.Code)
		set(cellRef(4, row), string(appendix.Status))
		set(cellRef(5, row), formatDate(appendix.StartDate))
		set(cellRef(6, row), formatDate(appendix.EndDate))
		set(cellRef(7, row), appendix.Description)
	}

	_ = file.SetColWidth(sheet, "A", "B", 38)
	_ = file.SetColWidth(sheet, "C", "C", 28)
	_ = file.SetColWidth(sheet, "H", "H", 40)
	return nil
}

func (g *Generator) writeLines(file *excelize.File, sheet string, portfolio model.Portfolio) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	productNames := make(map[uuid.UUID]string, len(portfolio.Products))
	for _, product := range portfolio.Products {
		productNames[product.ID] = product.Name
	}
	appendixCodes := make(map[uuid.UUID]string, len(portfolio.Appendices))
	for _, appendix := range portfolio.Appendices {
		appendixCodes[appendix.ID] = appendix.Code
	}

	headers := []string{
		"ID", "Appendix", "Product", "Status", "Start", "End",
		"Serial required", "Serial pattern", "Start rule", "Months", "Proof required",
		"Countries", "Channels", "In-warranty options", "Out-of-warranty options",
	}
	for i, header := range headers {
		set(cellRef(i, 1), header)
	}

	for rowIdx, line := range portfolio.Lines {
		row := rowIdx + 2
		set(cellRef(0, row), line.ID.String())
		set(cellRef(1, row), appendixCodes[line.AppendixID])
		set(cellRef(2, row), productNames[line.ProductID])
		set(cellRef(3, row), string(line.Status))
		set(cellRef(4, row), formatDate(line.StartDate))
		set(cellRef(5, row), formatDate(line.EndDate))
		set(cellRef(6, row), line.SerialRequired)
		set(cellRef(7, row), line.SerialPattern)
		set(cellRef(8, row), string(line.WarrantyStartRule))
		set(cellRef(9, row), line.WarrantyMonths)
		set(cellRef(10, row), line.ProofRequired)
		set(cellRef(11, row), strings.Join(line.AllowedCountries, ", "))
		set(cellRef(12, row), strings.Join(line.AllowedChannels, ", "))
		set(cellRef(13, row), strings.Join(inWarrantyOptions(line), ", "))
		set(cellRef(14, row), strings.Join(outOfWarrantyOptions(line), ", "))
	}

	_ = file.SetColWidth(sheet, "A", "A", 38)
	_ = file.SetColWidth(sheet, "B", "C", 24)
	_ = file.SetColWidth(sheet, "H", "H", 22)
	_ = file.SetColWidth(sheet, "N", "O", 34)
	return nil
}

func (g *Generator) writeProducts(file *excelize.File, sheet string, products []model.Product) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "ID")
	set("B1", "Name")
	for rowIdx, product := range products {
		row := rowIdx + 2
		set(fmt.Sprintf("A%d", row), product.ID.String())
		set(fmt.Sprintf("B%d", row), product.Name)
	}

	_ = file.SetColWidth(sheet, "A", "A", 38)
	_ = file.SetColWidth(sheet, "B", "B", 36)
	return nil
}

func inWarrantyOptions(line model.Line) []string {
	var options []string
	if line.AllowRepairStation {
		options = append(options, "repair_station")
	}
	if line.AllowPartsShipment {
		options = append(options, "parts_shipment")
	}
	if line.AllowRefund {
		options = append(options, "refund")
	}
	if line.AllowReplacement {
		options = append(options, "replacement")
	}
	return options
}

func outOfWarrantyOptions(line model.Line) []string {
	var options []string
	if line.AllowPaidRepair {
		options = append(options, "paid_repair")
	}
	if line.AllowPartsSale {
		options = append(options, "parts_sale")
	}
	return options
}

func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
