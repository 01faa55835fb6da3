// Package relrefs checks that every relationship reference in a package
// resolves. It never modifies the package.
package relrefs

import (
	"context"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Name is the stage name used in metrics and configuration.
const Name = "rel-references"

// Ensure Stage implements the interface.
var _ driven.RepairStage = (*Stage)(nil)

// Stage detects dangling relationship references.
type Stage struct{}

// New creates a new relationship reference stage.
func New() *Stage {
	return &Stage{}
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return Name
}

// Dangling is one reference whose Id has no relationship.
type Dangling struct {
	Part string
	Attr string
	ID   string
}

// String formats the reference as part#id.
func (d Dangling) String() string {
	return d.Part + "#" + d.ID
}

// Apply resolves every reference against its part's own .rels file.
func (s *Stage) Apply(ctx context.Context, pkg *domain.Package) (*driven.StageOutcome, error) {
	dangling, checked, err := Check(ctx, pkg)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(dangling))
	for _, d := range dangling {
		list = append(list, d.String())
	}

	return &driven.StageOutcome{
		Package: pkg,
		Stats: map[string]any{
			"danglingReferences": len(dangling),
			"checkedReferences":  checked,
			"dangling":           list,
		},
		Passed: domain.BoolPtr(len(dangling) == 0),
	}, nil
}

// Check returns every dangling reference in pkg and the number of
// references examined.
func Check(ctx context.Context, pkg *domain.Package) ([]Dangling, int, error) {
	var dangling []Dangling
	checked := 0

	for _, part := range pkg.Parts() {
		if !carriesReferences(part) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		refs, err := ooxml.RelationshipRefs(part.Data)
		if err != nil {
			return nil, 0, &domain.DecodeError{Part: part.Path, Err: err}
		}
		if len(refs) == 0 {
			continue
		}

		ids, err := relationshipIDs(pkg, part.Path)
		if err != nil {
			return nil, 0, err
		}
		for _, ref := range refs {
			checked++
			if _, ok := ids[ref.ID]; !ok {
				dangling = append(dangling, Dangling{Part: part.Path, Attr: ref.Attr, ID: ref.ID})
			}
		}
	}
	return dangling, checked, nil
}

func carriesReferences(part domain.Part) bool {
	switch part.Kind {
	case domain.PartKindContentTypes, domain.PartKindRelationships, domain.PartKindMedia,
		domain.PartKindEmbedding, domain.PartKindPrinterSettings:
		return false
	case domain.PartKindOther:
		ext := domain.Extension(part.Path)
		return ext == "xml" || ext == "vml"
	default:
		return part.Kind.IsXML()
	}
}

// relationshipIDs returns the Ids declared for partPath. A part without a
// .rels file declares none.
func relationshipIDs(pkg *domain.Package, partPath string) (map[string]struct{}, error) {
	relsPath := ooxml.RelsPathFor(partPath)
	part, ok := pkg.Part(relsPath)
	if !ok {
		return map[string]struct{}{}, nil
	}
	rels, err := ooxml.ParseRelationships(part.Data)
	if err != nil {
		return nil, &domain.DecodeError{Part: relsPath, Err: err}
	}
	ids := make(map[string]struct{}, len(rels))
	for _, r := range rels {
		ids[r.ID] = struct{}{}
	}
	return ids, nil
}
