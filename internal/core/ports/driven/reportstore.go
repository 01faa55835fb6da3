package driven

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// ReportStore persists repair reports.
type ReportStore interface {
	// Save stores or updates a report.
	Save(ctx context.Context, report *domain.RepairReport) error

	// Get retrieves a report by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.RepairReport, error)

	// List returns the most recent reports first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.RepairReport, error)

	// Delete removes a report.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
