package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lcharvet/sav-coverage/internal/engine"
	"github.com/lcharvet/sav-coverage/internal/model"
	"github.com/lcharvet/sav-coverage/internal/pdf"
)

// HierarchyStore supplies the read-only snapshot the engine evaluates
// against. A fresh snapshot per call keeps in-flight decisions isolated from
// concurrent back-office edits.
type HierarchyStore interface {
	LoadSnapshot(ctx context.Context) (*engine.Snapshot, error)
}

type PDFGenerator interface {
	Generate(doc pdf.DecisionDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(portfolio model.Portfolio) ([]byte, error)
}

type CoverageService struct {
	store HierarchyStore
	pdf   PDFGenerator
	excel ExcelGenerator
}

func NewCoverageService(store HierarchyStore, pdfGen PDFGenerator, excelGen ExcelGenerator) *CoverageService {
	return &CoverageService{
		store: store,
		pdf:   pdfGen,
		excel: excelGen,
	}
}

type DecideInput struct {
	ContractID *uuid.UUID
	AppendixID *uuid.UUID
	ProductID  uuid.UUID
	EventDate  time.Time
	Inputs     engine.ClaimInputs
}

type DocumentResult struct {
	FileName string
	Content  []byte
}

func (s *CoverageService) Decide(ctx context.Context, input DecideInput) (engine.Decision, error) {
	if err := validateDecideInput(input); err != nil {
		return engine.Decision{}, err
	}

	snapshot, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return engine.Decision{}, fmt.Errorf("load hierarchy: %w", err)
	}

	return engine.Decide(snapshot, engine.Request{
		Scope:     engine.Scope{ContractID: input.ContractID, AppendixID: input.AppendixID},
		ProductID: input.ProductID,
		EventDate: input.EventDate,
		Inputs:    input.Inputs,
	})
}

// DecisionReport evaluates the claim and renders the result as a PDF.
func (s *CoverageService) DecisionReport(ctx context.Context, input DecideInput) (*DocumentResult, error) {
	if err := validateDecideInput(input); err != nil {
		return nil, err
	}

	snapshot, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy: %w", err)
	}

	decision, err := engine.Decide(snapshot, engine.Request{
		Scope:     engine.Scope{ContractID: input.ContractID, AppendixID: input.AppendixID},
		ProductID: input.ProductID,
		EventDate: input.EventDate,
		Inputs:    input.Inputs,
	})
	if err != nil {
		return nil, err
	}

	doc := pdf.DecisionDocument{
		EventDate: input.EventDate,
		Decision:  decision,
	}
	if product, ok := snapshot.Product(input.ProductID); ok {
		doc.ProductName = product.Name
	} else {
		doc.ProductName = input.ProductID.String()
	}
	if decision.ResolvedContractID != nil {
		if contract, ok := snapshot.Contract(*decision.ResolvedContractID); ok {
			doc.ContractReference = contract.Reference
		}
	}
	if decision.ResolvedAppendixID != nil {
		if appendix, ok := snapshot.Appendix(*decision.ResolvedAppendixID); ok {
			doc.AppendixName = appendix.Name
			doc.AppendixCode = appendix.Code
		}
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(doc.ProductName)
	if name == "" {
		name = input.ProductID.String()
	}
	fileName := fmt.Sprintf("coverage-%s-%s.pdf", name, input.EventDate.Format("20060102"))
	return &DocumentResult{FileName: fileName, Content: content}, nil
}

// ExportPortfolio renders the whole hierarchy as a workbook.
func (s *CoverageService) ExportPortfolio(ctx context.Context) (*DocumentResult, error) {
	snapshot, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy: %w", err)
	}

	portfolio := model.Portfolio{
		Contracts:  snapshot.Contracts(),
		Appendices: snapshot.Appendices(),
		Lines:      snapshot.Lines(),
		Products:   snapshot.Products(),
	}

	content, err := s.excel.Generate(portfolio)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("portfolio-%s.xlsx", time.Now().UTC().Format("20060102"))
	return &DocumentResult{FileName: fileName, Content: content}, nil
}

func validateDecideInput(input DecideInput) error {
	if input.ContractID == nil && input.AppendixID == nil {
		return fmt.Errorf("%w: contract_id or appendix_id is required", ErrInvalidInput)
	}
	if input.ProductID == uuid.Nil {
		return fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	if input.EventDate.IsZero() {
		return fmt.Errorf("%w: event_date is required", ErrInvalidInput)
	}
	return nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
