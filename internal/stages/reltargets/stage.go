// Package reltargets rewrites package-root-absolute relationship targets
// to the relative form the packaging convention expects.
package reltargets

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Name is the stage name used in metrics and configuration.
const Name = "rel-targets"

// Ensure Stage implements the interface.
var _ driven.RepairStage = (*Stage)(nil)

// Stage normalises relationship targets.
type Stage struct{}

// New creates a new relationship target stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return Name
}

// Apply rewrites every absolute internal target in every .rels part.
// Relationships are never added or removed. A target naming the package
// root itself is still made relative; it is counted in rootTargets since
// it addresses no part.
func (s *Stage) Apply(ctx context.Context, pkg *domain.Package) (*driven.StageOutcome, error) {
	out := pkg
	normalized := 0
	partsChanged := 0
	rootTargets := 0

	for _, part := range pkg.PartsOfKind(domain.PartKindRelationships) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		baseDir := ooxml.RelsBaseDir(part.Path)
		data, n, err := ooxml.RewriteRelationshipTargets(part.Data, func(rel domain.Relationship) (string, bool) {
			if rel.IsExternal() || !ooxml.IsAbsoluteTarget(rel.Target) {
				return "", false
			}
			target, ok := ooxml.RelativizeTarget(baseDir, rel.Target)
			if !ok {
				rootTargets++
			}
			return target, true
		})
		if err != nil {
			return nil, &domain.DecodeError{Part: part.Path, Err: err}
		}
		if n == 0 {
			continue
		}

		normalized += n
		partsChanged++
		out = out.With(part.Path, data)
	}

	return &driven.StageOutcome{
		Package: out,
		Stats: map[string]any{
			"normalizedTargets": normalized,
			"partsChanged":      partsChanged,
			"rootTargets":       rootTargets,
		},
	}, nil
}
