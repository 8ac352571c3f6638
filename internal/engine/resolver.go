package engine

import (
	"github.com/google/uuid"

	"github.com/lcharvet/sav-coverage/internal/model"
)

// resolveLine finds the applicable active line for the product. Appendix
// scope looks inside that appendix only; contract scope walks the contract's
// active appendices in stored order and takes the first match.
func resolveLine(view *Snapshot, scope Scope, productID uuid.UUID) (model.Line, bool) {
	if scope.AppendixID != nil {
		return view.FindLine(*scope.AppendixID, productID)
	}

	if scope.ContractID != nil {
		for _, appendix := range view.ActiveAppendices(*scope.ContractID) {
			if line, ok := view.FindLine(appendix.ID, productID); ok {
				return line, true
			}
		}
	}

	return model.Line{}, false
}
