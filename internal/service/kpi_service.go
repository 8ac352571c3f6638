package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lcharvet/sav-coverage/internal/kpi"
	"github.com/lcharvet/sav-coverage/internal/model"
)

type KPIStore interface {
	ContractExists(ctx context.Context, contractID uuid.UUID) (bool, error)
	UpsertExpected(ctx context.Context, entry model.KPIEntry) error
	UpsertActual(ctx context.Context, entry model.KPIEntry) error
	ListExpected(ctx context.Context, contractID uuid.UUID, kpiType model.KPIType) ([]kpi.Sample, error)
	ListActual(ctx context.Context, contractID uuid.UUID, kpiType model.KPIType) ([]kpi.Sample, error)
}

type KPIService struct {
	store KPIStore
}

func NewKPIService(store KPIStore) *KPIService {
	return &KPIService{store: store}
}

type KPIRecordInput struct {
	ContractID uuid.UUID
	Type       model.KPIType
	Date       time.Time
	Value      int
}

func (s *KPIService) RecordExpected(ctx context.Context, input KPIRecordInput) error {
	return s.record(ctx, input, s.store.UpsertExpected)
}

func (s *KPIService) RecordActual(ctx context.Context, input KPIRecordInput) error {
	return s.record(ctx, input, s.store.UpsertActual)
}

func (s *KPIService) record(
	ctx context.Context,
	input KPIRecordInput,
	upsert func(context.Context, model.KPIEntry) error,
) error {
	if !input.Type.Valid() {
		return fmt.Errorf("%w: invalid kpi_type %q", ErrInvalidInput, input.Type)
	}
	if input.Value < 0 {
		return fmt.Errorf("%w: value must not be negative", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	exists, err := s.store.ContractExists(ctx, input.ContractID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: contract %s", ErrNotFound, input.ContractID)
	}

	return upsert(ctx, model.KPIEntry{
		ContractID: input.ContractID,
		Type:       input.Type,
		Date:       input.Date,
		Value:      input.Value,
	})
}

// Series returns one expected-vs-actual series per KPI type, in the fixed
// type order.
func (s *KPIService) Series(ctx context.Context, contractID uuid.UUID) ([]kpi.TypeSeries, error) {
	exists, err := s.store.ContractExists(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
	}

	result := make([]kpi.TypeSeries, 0, len(model.KPITypes))
	for _, kpiType := range model.KPITypes {
		expected, err := s.store.ListExpected(ctx, contractID, kpiType)
		if err != nil {
			return nil, err
		}
		actual, err := s.store.ListActual(ctx, contractID, kpiType)
		if err != nil {
			return nil, err
		}
		result = append(result, kpi.TypeSeries{
			Type:   kpiType,
			Series: kpi.BuildSeries(expected, actual),
		})
	}
	return result, nil
}

// Alerts flattens the non-green days of every type into one list.
func (s *KPIService) Alerts(ctx context.Context, contractID uuid.UUID) ([]kpi.Alert, error) {
	series, err := s.Series(ctx, contractID)
	if err != nil {
		return nil, err
	}

	alerts := []kpi.Alert{}
	for _, typeSeries := range series {
		alerts = append(alerts, kpi.Alerts(typeSeries.Type, typeSeries.Series)...)
	}
	return alerts, nil
}
