// Package nvids makes shape ids unique within each slide.
//
// Every slide is its own id arena: the first occurrence of an id keeps
// it, and each later duplicate (or non-numeric id) is moved to one past
// the arena's current maximum. Ids that were already unique are never
// touched, so external references to them stay valid.
package nvids

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Name is the stage name used in metrics and configuration.
const Name = "nv-ids"

// Ensure Stage implements the interface.
var _ driven.RepairStage = (*Stage)(nil)

// Stage normalises non-visual shape ids.
type Stage struct {
	includeLayouts bool
	maxID          uint32
}

// Option configures the stage.
type Option func(*Stage)

// WithLayouts extends normalisation to layouts, masters and notes, each
// part being its own arena.
func WithLayouts(include bool) Option {
	return func(s *Stage) {
		s.includeLayouts = include
	}
}

// WithMaxID lowers the largest id the stage may assign.
func WithMaxID(maxID uint32) Option {
	return func(s *Stage) {
		if maxID > 0 {
			s.maxID = maxID
		}
	}
}

// New creates a new shape id stage. By default only slides are processed.
func New(opts ...Option) *Stage {
	s := &Stage{maxID: ooxml.MaxShapeID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return Name
}

func (s *Stage) handles(kind domain.PartKind) bool {
	switch kind {
	case domain.PartKindSlide:
		return true
	case domain.PartKindSlideLayout, domain.PartKindSlideMaster, domain.PartKindNotesSlide,
		domain.PartKindNotesMaster, domain.PartKindHandoutMaster:
		return s.includeLayouts
	default:
		return false
	}
}

// Apply deduplicates ids in every handled part.
func (s *Stage) Apply(ctx context.Context, pkg *domain.Package) (*driven.StageOutcome, error) {
	out := pkg
	reassigned := 0
	partsChanged := 0
	postDuplicates := 0
	partsScanned := 0

	for _, part := range pkg.Parts() {
		if !s.handles(part.Kind) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		partsScanned++

		ids, err := ooxml.ShapeIDs(part.Data)
		if err != nil {
			return nil, &domain.DecodeError{Part: part.Path, Err: err}
		}

		replacements, err := s.allocate(part.Path, ids)
		if err != nil {
			return nil, err
		}
		if len(replacements) == 0 {
			continue
		}

		data, err := ooxml.RewriteShapeIDs(part.Data, replacements)
		if err != nil {
			return nil, &domain.DecodeError{Part: part.Path, Err: err}
		}

		remaining, err := s.verify(part.Path, data)
		if err != nil {
			return nil, err
		}
		postDuplicates += remaining

		reassigned += len(replacements)
		partsChanged++
		out = out.With(part.Path, data)
	}

	return &driven.StageOutcome{
		Package: out,
		Stats: map[string]any{
			"reassignedIds":    reassigned,
			"postDuplicateIds": postDuplicates,
			"partsChanged":     partsChanged,
			"partsScanned":     partsScanned,
		},
	}, nil
}

// allocate returns the new id for every shape index that needs one.
func (s *Stage) allocate(partPath string, ids []domain.NonVisualID) (map[int]uint32, error) {
	var maxUsed uint32
	for _, id := range ids {
		if id.Valid && id.ID > maxUsed {
			maxUsed = id.ID
		}
	}

	seen := make(map[uint32]struct{}, len(ids))
	replacements := make(map[int]uint32)
	for i, id := range ids {
		if id.Valid {
			if _, dup := seen[id.ID]; !dup {
				seen[id.ID] = struct{}{}
				continue
			}
		}
		if maxUsed >= s.maxID {
			return nil, domain.Invariantf(Name, partPath, "id space exhausted at %d", maxUsed)
		}
		maxUsed++
		seen[maxUsed] = struct{}{}
		replacements[i] = maxUsed
	}
	return replacements, nil
}

// verify re-reads a rewritten part and fails unless every id is unique.
func (s *Stage) verify(partPath string, data []byte) (int, error) {
	ids, err := ooxml.ShapeIDs(data)
	if err != nil {
		return 0, &domain.DecodeError{Part: partPath, Err: err}
	}
	remaining := ooxml.DuplicateShapeIDs(ids)
	if remaining != 0 {
		return remaining, domain.Invariantf(Name, partPath, "%d duplicate ids remain after reassignment", remaining)
	}
	for i, id := range ids {
		if !id.Valid {
			return 0, domain.Invariantf(Name, partPath, "shape %d still has invalid id %q", i, id.Value)
		}
	}
	return 0, nil
}
