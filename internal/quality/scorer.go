// Package quality computes a read-only structural health score for
// presentation packages.
//
// The score is the sum of weighted categories. Each category starts at its
// weight and loses a fixed penalty per violation, never dropping below
// zero. The scorer never modifies its input and never fails: a buffer that
// cannot be decoded scores zero.
package quality

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/stages/relrefs"
)

// Scorer computes quality scores.
type Scorer struct {
	codec driven.PackageCodec
}

// NewScorer creates a scorer that decodes buffers with codec.
func NewScorer(codec driven.PackageCodec) *Scorer {
	return &Scorer{codec: codec}
}

// Score decodes buf and scores it.
func (s *Scorer) Score(buf []byte) domain.QualityScore {
	if len(buf) == 0 {
		return invalid()
	}
	pkg, err := s.codec.Decode(buf)
	if err != nil {
		return invalid()
	}
	return s.ScorePackage(pkg)
}

// ScorePackage scores an already decoded package.
func (s *Scorer) ScorePackage(pkg *domain.Package) domain.QualityScore {
	if pkg == nil || pkg.Len() == 0 {
		return invalid()
	}

	f := newFindings()
	checkCriticalParts(pkg, f)
	checkRelationships(pkg, f)
	checkShapeIDs(pkg, f)
	checkReferences(pkg, f)
	checkContentTypes(pkg, f)

	score := domain.QualityScore{
		Issues:    f.issues,
		Breakdown: make(map[string]float64, len(domain.QualityCategories)),
	}
	if score.Issues == nil {
		score.Issues = []string{}
	}

	total := 0.0
	for _, c := range domain.QualityCategories {
		points := math.Max(0, c.Weight-c.Penalty*float64(f.violations[c.Name]))
		score.Breakdown[c.Name] = points
		total += points
	}
	score.Score = int(math.Round(math.Min(domain.MaxQualityScore, math.Max(0, total))))
	return score
}

func invalid() domain.QualityScore {
	return domain.QualityScore{
		Score:     0,
		Issues:    []string{domain.QualityIssueInvalidBuffer},
		Breakdown: map[string]float64{},
	}
}

// findings counts violations per category and collects distinct issues.
type findings struct {
	violations map[string]int
	issues     []string
	seen       map[string]struct{}
}

func newFindings() *findings {
	return &findings{
		violations: make(map[string]int),
		seen:       make(map[string]struct{}),
	}
}

func (f *findings) add(category, format string, args ...any) {
	f.violations[category]++
	issue := fmt.Sprintf(format, args...)
	if _, ok := f.seen[issue]; ok {
		return
	}
	f.seen[issue] = struct{}{}
	f.issues = append(f.issues, issue)
}

func checkCriticalParts(pkg *domain.Package, f *findings) {
	for _, p := range domain.CriticalParts {
		if !pkg.Has(p) {
			f.add(domain.CategoryCriticalParts, "Missing critical part %s", p)
		}
	}
}

// checkRelationships scores Id uniqueness and target health of every
// .rels part.
func checkRelationships(pkg *domain.Package, f *findings) {
	for _, part := range pkg.PartsOfKind(domain.PartKindRelationships) {
		rels, err := ooxml.ParseRelationships(part.Data)
		if err != nil {
			f.add(domain.CategoryRelationshipIDUniqueness, "Unreadable relationships part %s", part.Path)
			continue
		}

		for _, id := range ooxml.DuplicateRelationshipIDs(rels) {
			f.add(domain.CategoryRelationshipIDUniqueness, "Duplicate relationship id %s in %s", id, part.Path)
		}

		base := ooxml.RelsBaseDir(part.Path)
		for _, r := range rels {
			if r.IsExternal() {
				continue
			}
			if ooxml.IsAbsoluteTarget(r.Target) {
				f.add(domain.CategoryRelationshipTargets, "Absolute relationship target %s in %s", r.Target, part.Path)
				continue
			}
			resolved, ok := ooxml.ResolveTarget(base, r.Target)
			if !ok || !pkg.Has(resolved) {
				f.add(domain.CategoryRelationshipTargets, "Unresolvable relationship target %s in %s", r.Target, part.Path)
			}
		}
	}
}

func checkShapeIDs(pkg *domain.Package, f *findings) {
	for _, part := range pkg.PartsOfKind(domain.PartKindSlide) {
		ids, err := ooxml.ShapeIDs(part.Data)
		if err != nil {
			f.add(domain.CategoryNonVisualIDUniqueness, "Unreadable slide %s", part.Path)
			continue
		}
		for i := 0; i < ooxml.DuplicateShapeIDs(ids); i++ {
			f.add(domain.CategoryNonVisualIDUniqueness, "Duplicate shape ids in %s", part.Path)
		}
		for _, id := range ids {
			if !id.Valid {
				f.add(domain.CategoryNonVisualIDUniqueness, "Invalid shape id %q in %s", id.Value, part.Path)
			}
		}
	}
}

func checkReferences(pkg *domain.Package, f *findings) {
	dangling, _, err := relrefs.Check(context.Background(), pkg)
	if err != nil {
		f.add(domain.CategoryRelationshipReferences, "Unreadable part while resolving references: %v", err)
		return
	}
	for _, d := range dangling {
		f.add(domain.CategoryRelationshipReferences, "Dangling reference %s in %s", d.ID, d.Part)
	}
}

func checkContentTypes(pkg *domain.Package, f *findings) {
	ct := &ooxml.ContentTypes{}
	if part, ok := pkg.Part(domain.ContentTypesPath); ok {
		parsed, err := ooxml.ParseContentTypes(part.Data)
		if err != nil {
			f.add(domain.CategoryContentTypeCompleteness, "Unreadable content types part")
		} else {
			ct = parsed
		}
	}

	for _, part := range pkg.Parts() {
		if part.Kind == domain.PartKindContentTypes {
			continue
		}
		got, ok := ct.Effective(part.Path)
		if !ok {
			f.add(domain.CategoryContentTypeCompleteness, "No content type declared for %s", part.Path)
			continue
		}
		if want := part.Kind.ContentType(); want != "" && got != want {
			f.add(domain.CategoryContentTypeCompleteness, "Wrong content type for %s", part.Path)
		}
	}

	for _, o := range ct.Overrides {
		if _, ok := pkg.Lookup(ooxml.PathFromPartName(o.PartName)); !ok {
			f.add(domain.CategoryContentTypeCompleteness, "Stale content-type override for %s", o.PartName)
		}
	}
}
