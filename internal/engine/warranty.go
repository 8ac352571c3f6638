package engine

import (
	"time"

	"github.com/lcharvet/sav-coverage/internal/model"
)

// AddMonths applies calendar-month arithmetic. Day of month is preserved
// where valid; overflow rolls into the following month (Jan 31 + 1 month
// lands in early March), matching time.AddDate normalization.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// computeWarranty classifies the event against the warranty window and
// derives the permitted resolutions from the line flags. The boundary day is
// in-warranty. Resolution order is fixed: repair_station, parts_shipment,
// refund, replacement in warranty; paid_repair, parts_sale out of warranty.
func computeWarranty(line model.Line, event, start time.Time) (bool, time.Time, []Resolution) {
	end := AddMonths(start, line.WarrantyMonths)
	inWarranty := !event.After(end)

	resolutions := []Resolution{}
	if inWarranty {
		if line.AllowRepairStation {
			resolutions = append(resolutions, ResolutionRepairStation)
		}
		if line.AllowPartsShipment {
			resolutions = append(resolutions, ResolutionPartsShipment)
		}
		if line.AllowRefund {
			resolutions = append(resolutions, ResolutionRefund)
		}
		if line.AllowReplacement {
			resolutions = append(resolutions, ResolutionReplacement)
		}
	} else {
		if line.AllowPaidRepair {
			resolutions = append(resolutions, ResolutionPaidRepair)
		}
		if line.AllowPartsSale {
			resolutions = append(resolutions, ResolutionPartsSale)
		}
	}

	return inWarranty, end, resolutions
}
