package driving

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// RepairOptions tunes a single repair call.
type RepairOptions struct {
	// CheckIdempotency re-runs the pipeline on its own output.
	// Nil uses the configured setting.
	CheckIdempotency *bool

	// OutputPath overrides where RepairFile writes. Empty derives the path
	// from the input path and the configured output suffix.
	OutputPath string

	// DryRun runs the pipeline without writing any output file.
	DryRun bool
}

// RepairService repairs presentation packages.
type RepairService interface {
	// RepairBytes repairs an in-memory package. The repaired bytes are in
	// report.Result.Output.
	RepairBytes(ctx context.Context, buf []byte, opts RepairOptions) (*domain.RepairReport, error)

	// RepairFile repairs the package at path and writes the result.
	RepairFile(ctx context.Context, path string, opts RepairOptions) (*domain.RepairReport, error)

	// RepairBatch expands glob patterns and repairs every match
	// concurrently. One failing file does not stop the others; its report
	// carries the error.
	RepairBatch(ctx context.Context, patterns []string, opts RepairOptions) ([]domain.RepairReport, error)

	// OutputPathFor returns where RepairFile writes the repair of path.
	OutputPathFor(path string) string
}
