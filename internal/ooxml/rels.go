package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// RelationshipsNS is the namespace of .rels parts.
const RelationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// Well-known relationship types.
const (
	RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTypeTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeCoreProperties = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// relationshipsXML represents the structure of a .rels part.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// ParseRelationships parses a .rels part.
func ParseRelationships(data []byte) ([]domain.Relationship, error) {
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	rels := make([]domain.Relationship, 0, len(doc.Relationships))
	for _, r := range doc.Relationships {
		rels = append(rels, domain.Relationship{
			ID:         r.ID,
			Type:       r.Type,
			Target:     r.Target,
			TargetMode: r.TargetMode,
		})
	}
	return rels, nil
}

// MarshalRelationships serializes rels as a .rels part.
func MarshalRelationships(rels []domain.Relationship) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	buf.WriteString(`<Relationships xmlns="` + RelationshipsNS + `">`)
	for _, r := range rels {
		buf.WriteString(`<Relationship Id="`)
		buf.Write(escapeAttr(r.ID))
		buf.WriteString(`" Type="`)
		buf.Write(escapeAttr(r.Type))
		buf.WriteString(`" Target="`)
		buf.Write(escapeAttr(r.Target))
		buf.WriteByte('"')
		if r.TargetMode != "" {
			buf.WriteString(` TargetMode="`)
			buf.Write(escapeAttr(r.TargetMode))
			buf.WriteByte('"')
		}
		buf.WriteString(`/>`)
	}
	buf.WriteString(`</Relationships>`)
	return buf.Bytes()
}

// TargetRewriter decides the new target of a relationship. It returns
// false to leave the relationship untouched.
type TargetRewriter func(rel domain.Relationship) (string, bool)

// RewriteRelationshipTargets applies fn to every Relationship in data and
// splices changed Target values into the original bytes. It returns data
// unchanged (same slice) when nothing was rewritten.
func RewriteRelationshipTargets(data []byte, fn TargetRewriter) ([]byte, int, error) {
	elements, err := scanElements(data, func(se xml.StartElement) bool {
		return se.Name.Local == "Relationship"
	})
	if err != nil {
		return nil, 0, fmt.Errorf("parsing relationships: %w", err)
	}

	var edits []edit
	for _, el := range elements {
		rel := relationshipFromElement(el)
		target, ok := fn(rel)
		if !ok || target == rel.Target {
			continue
		}
		edits = append(edits, setAttr(data, el, "Target", target))
	}
	return applyEdits(data, edits), len(edits), nil
}

func relationshipFromElement(el element) domain.Relationship {
	var rel domain.Relationship
	rel.ID, _ = el.attr("Id")
	rel.Type, _ = el.attr("Type")
	rel.Target, _ = el.attr("Target")
	rel.TargetMode, _ = el.attr("TargetMode")
	return rel
}

// DuplicateRelationshipIDs returns each Id that occurs more than once, in
// order of first repetition.
func DuplicateRelationshipIDs(rels []domain.Relationship) []string {
	seen := make(map[string]int, len(rels))
	var dups []string
	for _, r := range rels {
		seen[r.ID]++
		if seen[r.ID] == 2 {
			dups = append(dups, r.ID)
		}
	}
	return dups
}
