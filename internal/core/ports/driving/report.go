package driving

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// ReportService exposes repair history.
type ReportService interface {
	// List returns the most recent reports first.
	List(ctx context.Context, limit int) ([]domain.RepairReport, error)

	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*domain.RepairReport, error)

	// Delete removes a report.
	Delete(ctx context.Context, id string) error
}
