package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lcharvet/sav-coverage/internal/kpi"
	"github.com/lcharvet/sav-coverage/internal/model"
)

type KPIRepository struct {
	db *gorm.DB
}

func NewKPIRepository(db *gorm.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

func (r *KPIRepository) ContractExists(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts WHERE id = ?
	`, contractID).Scan(&count).Error
	return count > 0, err
}

// UpsertExpected records the planned count for one day, replacing an earlier
// plan for the same day.
func (r *KPIRepository) UpsertExpected(ctx context.Context, entry model.KPIEntry) error {
	return r.upsert(ctx, "kpi_expected", entry)
}

func (r *KPIRepository) UpsertActual(ctx context.Context, entry model.KPIEntry) error {
	return r.upsert(ctx, "kpi_actual", entry)
}

func (r *KPIRepository) upsert(ctx context.Context, table string, entry model.KPIEntry) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO `+table+` (id, contract_id, kpi_type, date, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (contract_id, kpi_type, date) DO UPDATE SET value = EXCLUDED.value
	`, uuid.New(), entry.ContractID, string(entry.Type), dateOnly(entry.Date), entry.Value).Error
}

func (r *KPIRepository) ListExpected(ctx context.Context, contractID uuid.UUID, kpiType model.KPIType) ([]kpi.Sample, error) {
	return r.list(ctx, "kpi_expected", contractID, kpiType)
}

func (r *KPIRepository) ListActual(ctx context.Context, contractID uuid.UUID, kpiType model.KPIType) ([]kpi.Sample, error) {
	return r.list(ctx, "kpi_actual", contractID, kpiType)
}

func (r *KPIRepository) list(ctx context.Context, table string, contractID uuid.UUID, kpiType model.KPIType) ([]kpi.Sample, error) {
	var samples []kpi.Sample
	err := r.db.WithContext(ctx).Raw(`
		SELECT date, value
		FROM `+table+`
		WHERE contract_id = ? AND kpi_type = ?
		ORDER BY date ASC
	`, contractID, string(kpiType)).Scan(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
