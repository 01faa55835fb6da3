package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// ReportService exposes repair history.
type ReportService struct {
	store driven.ReportStore
}

// NewReportService creates a new report service.
func NewReportService(store driven.ReportStore) *ReportService {
	return &ReportService{store: store}
}

// List returns the most recent reports first.
func (s *ReportService) List(ctx context.Context, limit int) ([]domain.RepairReport, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.store.List(ctx, limit)
}

// Get retrieves a report by ID.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.RepairReport, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: report id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: report id is required", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}
