package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lcharvet/sav-coverage/internal/engine"
	"github.com/lcharvet/sav-coverage/internal/model"
)

// HierarchyRepository reads the contractual hierarchy. It never writes;
// contracts, appendices and lines are managed by the back-office tooling.
type HierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

type contractRow struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	Reference          string
	Status             string
	StartDate          time.Time
	EndDate            time.Time
	BillingRatePercent float64
	BillingBase        string
	Currency           string
	Notes              string
}

type appendixRow struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Name        string
	Code        string
	Status      string
	StartDate   time.Time
	EndDate     time.Time
	Description string
}

type lineRow struct {
	ID                 uuid.UUID
	AppendixID         uuid.UUID
	ProductID          uuid.UUID
	Status             string
	StartDate          time.Time
	EndDate            time.Time
	SerialRequired     bool
	SerialPattern      string
	WarrantyStartRule  string
	WarrantyMonths     int
	ProofRequired      bool
	AllowedCountries   string
	AllowedChannels    string
	AllowRepairStation bool
	AllowPartsShipment bool
	AllowRefund        bool
	AllowReplacement   bool
	AllowPaidRepair    bool
	AllowPartsSale     bool
}

// LoadSnapshot reads the whole hierarchy in creation order and indexes it
// for the engine. The snapshot is detached from the database: concurrent
// writes after the load do not affect in-flight evaluations.
func (r *HierarchyRepository) LoadSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	var contractRows []contractRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, reference, status, start_date, end_date,
			billing_rate_percent, billing_base, currency, COALESCE(notes, '') AS notes
		FROM contracts
		ORDER BY created_at ASC, id ASC
	`).Scan(&contractRows).Error; err != nil {
		return nil, err
	}

	var appendixRows []appendixRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, name, code, status, start_date, end_date,
			COALESCE(description, '') AS description
		FROM appendices
		ORDER BY created_at ASC, id ASC
	`).Scan(&appendixRows).Error; err != nil {
		return nil, err
	}

	var lineRows []lineRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, appendix_id, product_id, status, start_date, end_date,
			serial_required, COALESCE(serial_pattern, '') AS serial_pattern,
			warranty_start_rule, warranty_months, proof_required,
			allowed_countries, allowed_channels,
			allow_repair_station, allow_parts_shipment, allow_refund,
			allow_replacement, allow_paid_repair, allow_parts_sale
		FROM contract_lines
		ORDER BY created_at ASC, id ASC
	`).Scan(&lineRows).Error; err != nil {
		return nil, err
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name
		FROM products
		ORDER BY created_at ASC, id ASC
	`).Scan(&products).Error; err != nil {
		return nil, err
	}

	contracts := make([]model.Contract, 0, len(contractRows))
	for _, row := range contractRows {
		contracts = append(contracts, model.Contract{
			ID:                 row.ID,
			ClientID:           row.ClientID,
			Reference:          row.Reference,
			Status:             model.ContractStatus(row.Status),
			StartDate:          row.StartDate,
			EndDate:            row.EndDate,
			BillingRatePercent: row.BillingRatePercent,
			BillingBase:        row.BillingBase,
			Currency:           row.Currency,
			Notes:              row.Notes,
		})
	}

	appendices := make([]model.Appendix, 0, len(appendixRows))
	for _, row := range appendixRows {
		appendices = append(appendices, model.Appendix{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Name:        row.Name,
			Code:        row.Code,
			Status:      model.AppendixStatus(row.Status),
			StartDate:   row.StartDate,
			EndDate:     row.EndDate,
			Description: row.Description,
		})
	}

	lines := make([]model.Line, 0, len(lineRows))
	for _, row := range lineRows {
		lines = append(lines, model.Line{
			ID:                 row.ID,
			AppendixID:         row.AppendixID,
			ProductID:          row.ProductID,
			Status:             model.LineStatus(row.Status),
			StartDate:          row.StartDate,
			EndDate:            row.EndDate,
			SerialRequired:     row.SerialRequired,
			SerialPattern:      row.SerialPattern,
			WarrantyStartRule:  model.WarrantyStartRule(row.WarrantyStartRule),
			WarrantyMonths:     row.WarrantyMonths,
			ProofRequired:      row.ProofRequired,
			AllowedCountries:   parseList(row.AllowedCountries),
			AllowedChannels:    parseList(row.AllowedChannels),
			AllowRepairStation: row.AllowRepairStation,
			AllowPartsShipment: row.AllowPartsShipment,
			AllowRefund:        row.AllowRefund,
			AllowReplacement:   row.AllowReplacement,
			AllowPaidRepair:    row.AllowPaidRepair,
			AllowPartsSale:     row.AllowPartsSale,
		})
	}

	return engine.NewSnapshot(contracts, appendices, lines, products)
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
