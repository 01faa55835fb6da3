package driving

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// QualityService scores the structural health of packages.
type QualityService interface {
	// ScoreBytes scores an in-memory package. It never fails: undecodable
	// input scores 0.
	ScoreBytes(ctx context.Context, buf []byte) domain.QualityScore

	// ScoreFile reads and scores the package at path.
	ScoreFile(ctx context.Context, path string) (domain.QualityScore, error)
}
