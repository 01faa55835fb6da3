// Package contenttypes reconciles [Content_Types].xml against the parts
// actually present in a package.
package contenttypes

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Name is the stage name used in metrics and configuration.
const Name = "content-types"

// Ensure Stage implements the interface.
var _ driven.RepairStage = (*Stage)(nil)

// Stage reconciles content-type declarations.
type Stage struct {
	extraDefaults map[string]string
}

// Option configures the stage.
type Option func(*Stage)

// WithDefault registers an extension the stage may declare as a Default
// when a part with that extension has no declaration.
func WithDefault(ext, contentType string) Option {
	return func(s *Stage) {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" && contentType != "" {
			s.extraDefaults[ext] = strings.TrimSpace(contentType)
		}
	}
}

// New creates a new content-type stage.
func New(opts ...Option) *Stage {
	s := &Stage{extraDefaults: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return Name
}

// counters accumulates the reconciliation diff.
type counters struct {
	addedOverrides    int
	removedDangling   int
	removedDuplicates int
	addedDefaults     int
}

// Apply adds missing overrides, corrects wrong ones, drops overrides that
// name absent parts, and declares Defaults for undeclared extensions.
func (s *Stage) Apply(ctx context.Context, pkg *domain.Package) (*driven.StageOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := false
	var declared *ooxml.ContentTypes
	if part, ok := pkg.Part(domain.ContentTypesPath); ok {
		parsed, err := ooxml.ParseContentTypes(part.Data)
		if err != nil {
			return nil, &domain.DecodeError{Part: part.Path, Err: err}
		}
		declared = parsed
	} else {
		declared = &ooxml.ContentTypes{}
		created = true
	}

	var c counters
	next := declared.Clone()
	s.reconcileDefaults(pkg, next, &c)
	next.Overrides = s.reconcileOverrides(pkg, next, &c)

	if err := s.verify(pkg, next); err != nil {
		return nil, err
	}

	out := pkg
	changed := created || c.addedOverrides > 0 || c.removedDangling > 0 ||
		c.removedDuplicates > 0 || c.addedDefaults > 0
	if changed {
		out = pkg.With(domain.ContentTypesPath, next.Marshal())
	}

	return &driven.StageOutcome{
		Package: out,
		Stats: map[string]any{
			"diff": map[string]any{
				"addedOverrides":  c.addedOverrides,
				"removedDangling": c.removedDangling,
			},
			"addedOverrides":    c.addedOverrides,
			"removedDangling":   c.removedDangling,
			"removedDuplicates": c.removedDuplicates,
			"addedDefaults":     c.addedDefaults,
			"created":           created,
		},
	}, nil
}

// reconcileDefaults declares a Default for every extension present in the
// package whose content type is known but undeclared.
func (s *Stage) reconcileDefaults(pkg *domain.Package, ct *ooxml.ContentTypes, c *counters) {
	for _, part := range pkg.Parts() {
		if part.Kind == domain.PartKindContentTypes {
			continue
		}
		ext := domain.Extension(part.Path)
		if ext == "" {
			continue
		}
		if _, ok := ct.DefaultFor(ext); ok {
			continue
		}
		contentType, ok := s.defaultContentType(ext)
		if !ok {
			continue
		}
		ct.Defaults = append(ct.Defaults, domain.ContentTypeDefault{Extension: ext, ContentType: contentType})
		c.addedDefaults++
	}
}

func (s *Stage) defaultContentType(ext string) (string, bool) {
	switch ext {
	case "rels":
		return domain.ContentTypeRelationships, true
	case "xml":
		return domain.ContentTypeXML, true
	}
	if ct, ok := s.extraDefaults[ext]; ok {
		return ct, true
	}
	return domain.MediaContentType(ext)
}

// required returns the content type partPath must be overridden with, or
// false when its Default already covers it or its true type is unknown.
func required(part domain.Part, ct *ooxml.ContentTypes) (string, bool) {
	want := part.Kind.ContentType()
	if want == "" {
		return "", false
	}
	if def, ok := ct.DefaultFor(domain.Extension(part.Path)); ok && def == want {
		return "", false
	}
	return want, true
}

func (s *Stage) reconcileOverrides(pkg *domain.Package, ct *ooxml.ContentTypes, c *counters) []domain.ContentTypeOverride {
	kept := make([]domain.ContentTypeOverride, 0, len(ct.Overrides))
	index := make(map[string]int, len(ct.Overrides))

	for _, o := range ct.Overrides {
		part, exists := pkg.Lookup(ooxml.PathFromPartName(o.PartName))
		if !exists {
			c.removedDangling++
			continue
		}
		key := strings.ToLower(part.Path)
		if _, dup := index[key]; dup {
			c.removedDuplicates++
			continue
		}

		corrected := false
		if name := ooxml.PartName(part.Path); o.PartName != name {
			o.PartName = name
			corrected = true
		}
		if want, ok := required(part, ct); ok && o.ContentType != want {
			o.ContentType = want
			corrected = true
		}
		if corrected {
			c.addedOverrides++
		}
		index[key] = len(kept)
		kept = append(kept, o)
	}

	for _, part := range pkg.Parts() {
		want, ok := required(part, ct)
		if !ok {
			continue
		}
		if _, declared := index[strings.ToLower(part.Path)]; declared {
			continue
		}
		index[strings.ToLower(part.Path)] = len(kept)
		kept = append(kept, domain.ContentTypeOverride{PartName: ooxml.PartName(part.Path), ContentType: want})
		c.addedOverrides++
	}
	return kept
}

// verify checks the post-condition: every required part has exactly one
// correct override and no override is dangling.
func (s *Stage) verify(pkg *domain.Package, ct *ooxml.ContentTypes) error {
	counts := make(map[string]int, len(ct.Overrides))
	for _, o := range ct.Overrides {
		part, exists := pkg.Lookup(ooxml.PathFromPartName(o.PartName))
		if !exists {
			return domain.Invariantf(Name, "", "override %s names no part", o.PartName)
		}
		counts[strings.ToLower(part.Path)]++
	}
	for key, n := range counts {
		if n != 1 {
			return domain.Invariantf(Name, key, "%d overrides declared", n)
		}
	}
	for _, part := range pkg.Parts() {
		want, ok := required(part, ct)
		if !ok {
			continue
		}
		got, found := ct.OverrideFor(part.Path)
		if !found || got.ContentType != want {
			return domain.Invariantf(Name, part.Path, "%s", describeMismatch(want, got, found))
		}
	}
	return nil
}

func describeMismatch(want string, got domain.ContentTypeOverride, found bool) string {
	if !found {
		return "override missing for " + want
	}
	return fmt.Sprintf("override declares %s, want %s", got.ContentType, want)
}
