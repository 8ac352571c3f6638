package engine

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/lcharvet/sav-coverage/internal/model"
)

// Snapshot is an immutable view over the contractual hierarchy. It is built
// once by the caller and only read during evaluation, so concurrent decisions
// may share one snapshot without coordination. Stored order of appendices and
// lines is preserved; the resolver depends on it.
type Snapshot struct {
	contracts     map[uuid.UUID]model.Contract
	contractOrder []uuid.UUID
	appendices    map[uuid.UUID]model.Appendix
	appendixOrder []uuid.UUID
	byContract    map[uuid.UUID][]uuid.UUID
	lines         []model.Line
	byAppendix    map[uuid.UUID][]int
	patterns      map[uuid.UUID]*regexp.Regexp
	products      map[uuid.UUID]model.Product
	productOrder  []uuid.UUID
}

// NewSnapshot indexes the hierarchy in the order the slices were given.
// Serial patterns are compiled here so the evaluator never hits a pattern
// compile failure; a malformed pattern or an inverted date window is a
// data fault and fails the build.
func NewSnapshot(
	contracts []model.Contract,
	appendices []model.Appendix,
	lines []model.Line,
	products []model.Product,
) (*Snapshot, error) {
	s := &Snapshot{
		contracts:  make(map[uuid.UUID]model.Contract, len(contracts)),
		appendices: make(map[uuid.UUID]model.Appendix, len(appendices)),
		byContract: make(map[uuid.UUID][]uuid.UUID),
		lines:      make([]model.Line, 0, len(lines)),
		byAppendix: make(map[uuid.UUID][]int),
		patterns:   make(map[uuid.UUID]*regexp.Regexp),
		products:   make(map[uuid.UUID]model.Product, len(products)),
	}

	for _, contract := range contracts {
		if contract.StartDate.After(contract.EndDate) {
			return nil, fmt.Errorf("contract %s: start date after end date", contract.ID)
		}
		s.contracts[contract.ID] = contract
		s.contractOrder = append(s.contractOrder, contract.ID)
	}

	for _, appendix := range appendices {
		if appendix.StartDate.After(appendix.EndDate) {
			return nil, fmt.Errorf("appendix %s: start date after end date", appendix.ID)
		}
		s.appendices[appendix.ID] = appendix
		s.appendixOrder = append(s.appendixOrder, appendix.ID)
		s.byContract[appendix.ContractID] = append(s.byContract[appendix.ContractID], appendix.ID)
	}

	for _, line := range lines {
		if line.StartDate.After(line.EndDate) {
			return nil, fmt.Errorf("line %s: start date after end date", line.ID)
		}
		if line.SerialPattern != "" {
			// Anchored so patterns match the whole serial, with or
			// without explicit ^ and $.
			compiled, err := regexp.Compile(`\A(?:` + line.SerialPattern + `)\z`)
			if err != nil {
				return nil, fmt.Errorf("line %s: invalid serial pattern: %w", line.ID, err)
			}
			s.patterns[line.ID] = compiled
		}
		s.lines = append(s.lines, line)
		s.byAppendix[line.AppendixID] = append(s.byAppendix[line.AppendixID], len(s.lines)-1)
	}

	for _, product := range products {
		s.products[product.ID] = product
		s.productOrder = append(s.productOrder, product.ID)
	}

	return s, nil
}

func (s *Snapshot) Contract(id uuid.UUID) (model.Contract, bool) {
	contract, ok := s.contracts[id]
	return contract, ok
}

func (s *Snapshot) Appendix(id uuid.UUID) (model.Appendix, bool) {
	appendix, ok := s.appendices[id]
	return appendix, ok
}

// ActiveAppendices returns the contract's active appendices in stored order.
func (s *Snapshot) ActiveAppendices(contractID uuid.UUID) []model.Appendix {
	var result []model.Appendix
	for _, id := range s.byContract[contractID] {
		appendix := s.appendices[id]
		if appendix.Status == model.AppendixStatusActive {
			result = append(result, appendix)
		}
	}
	return result
}

// FindLine returns the first active line for the product within the appendix,
// in stored order. Under the one-active-line-per-product invariant there is at
// most one; first match keeps the lookup deterministic if the invariant is
// ever violated.
func (s *Snapshot) FindLine(appendixID, productID uuid.UUID) (model.Line, bool) {
	for _, idx := range s.byAppendix[appendixID] {
		line := s.lines[idx]
		if line.ProductID == productID && line.Status == model.LineStatusActive {
			return line, true
		}
	}
	return model.Line{}, false
}

// SerialPattern returns the compiled pattern for a line, nil when the line
// carries no format constraint.
func (s *Snapshot) SerialPattern(lineID uuid.UUID) *regexp.Regexp {
	return s.patterns[lineID]
}

func (s *Snapshot) Product(id uuid.UUID) (model.Product, bool) {
	product, ok := s.products[id]
	return product, ok
}

// Contracts lists every contract in stored order, active or not.
func (s *Snapshot) Contracts() []model.Contract {
	result := make([]model.Contract, 0, len(s.contractOrder))
	for _, id := range s.contractOrder {
		result = append(result, s.contracts[id])
	}
	return result
}

func (s *Snapshot) Appendices() []model.Appendix {
	result := make([]model.Appendix, 0, len(s.appendixOrder))
	for _, id := range s.appendixOrder {
		result = append(result, s.appendices[id])
	}
	return result
}

func (s *Snapshot) Lines() []model.Line {
	result := make([]model.Line, len(s.lines))
	copy(result, s.lines)
	return result
}

func (s *Snapshot) Products() []model.Product {
	result := make([]model.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		result = append(result, s.products[id])
	}
	return result
}
