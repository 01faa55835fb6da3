package ooxml

import (
	"fmt"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// Namespaces whose attributes carry relationship Ids.
const (
	OfficeRelationshipsNS       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	StrictOfficeRelationshipsNS = "http://purl.oclc.org/ooxml/officeDocument/relationships"
)

// RelationshipRefs returns every attribute in data whose value names a
// relationship Id (r:id, r:embed, r:link, r:pict, r:dm, ...), in
// document order. Empty values are skipped.
func RelationshipRefs(data []byte) ([]domain.RelationshipRef, error) {
	elements, err := scanElements(data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing relationship references: %w", err)
	}

	var refs []domain.RelationshipRef
	for _, el := range elements {
		for _, a := range el.Attrs {
			if a.Name.Space != OfficeRelationshipsNS && a.Name.Space != StrictOfficeRelationshipsNS {
				continue
			}
			if a.Value == "" {
				continue
			}
			refs = append(refs, domain.RelationshipRef{Attr: a.Name.Local, ID: a.Value})
		}
	}
	return refs, nil
}
