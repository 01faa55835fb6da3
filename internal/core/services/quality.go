package services

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
	"github.com/custodia-labs/deckmend/internal/quality"
)

// Ensure QualityService implements the interface.
var _ driving.QualityService = (*QualityService)(nil)

// QualityService scores packages without modifying them.
type QualityService struct {
	scorer *quality.Scorer
}

// NewQualityService creates a new quality service.
func NewQualityService(codec driven.PackageCodec) *QualityService {
	return &QualityService{scorer: quality.NewScorer(codec)}
}

// ScoreBytes scores an in-memory package.
func (s *QualityService) ScoreBytes(_ context.Context, buf []byte) domain.QualityScore {
	return s.scorer.Score(buf)
}

// ScoreFile reads and scores the package at path.
func (s *QualityService) ScoreFile(ctx context.Context, path string) (domain.QualityScore, error) {
	if err := ctx.Err(); err != nil {
		return domain.QualityScore{}, err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return domain.QualityScore{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.scorer.Score(buf), nil
}
