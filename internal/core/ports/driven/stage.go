package driven

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// RepairStage is one step of the repair pipeline.
// Stages are chained in a fixed order; each consumes the previous
// stage's package and never mutates it.
type RepairStage interface {
	// Name returns the stage name for metrics, logging and configuration.
	Name() string

	// Apply runs the stage. A stage that changes nothing must return the
	// input package itself so the driver can skip re-hashing.
	Apply(ctx context.Context, pkg *domain.Package) (*StageOutcome, error)
}

// StageOutcome is what a stage produced.
type StageOutcome struct {
	// Package is the stage output.
	Package *domain.Package

	// Stats holds stage-specific counters.
	Stats map[string]any

	// Passed is set by diagnostic stages; nil means not applicable.
	Passed *bool
}
