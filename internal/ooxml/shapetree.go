package ooxml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// MaxShapeID is the largest id a cNvPr element can carry (xsd:unsignedInt).
const MaxShapeID = 1<<32 - 1

func isNonVisualProps(se xml.StartElement) bool {
	return se.Name.Local == "cNvPr"
}

// ShapeIDs returns the id of every shape's non-visual properties, in
// document order. Within mc:AlternateContent only the primary branch is
// read, since every branch repeats the same shape and its id.
func ShapeIDs(data []byte) ([]domain.NonVisualID, error) {
	elements, err := scanPrimaryElements(data, isNonVisualProps)
	if err != nil {
		return nil, fmt.Errorf("parsing shape tree: %w", err)
	}

	ids := make([]domain.NonVisualID, 0, len(elements))
	for _, el := range elements {
		value, _ := el.attr("id")
		ids = append(ids, parseShapeID(value))
	}
	return ids, nil
}

func parseShapeID(value string) domain.NonVisualID {
	id := domain.NonVisualID{Value: value}
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err == nil && n > 0 {
		id.ID = uint32(n)
		id.Valid = true
	}
	return id
}

// RewriteShapeIDs sets new ids on the cNvPr elements at the given
// document-order indexes. Copies of a shape in other mc:AlternateContent
// branches get the same new id.
func RewriteShapeIDs(data []byte, replacements map[int]uint32) ([]byte, error) {
	if len(replacements) == 0 {
		return data, nil
	}
	elements, err := scanPrimaryElements(data, isNonVisualProps)
	if err != nil {
		return nil, fmt.Errorf("parsing shape tree: %w", err)
	}

	edits := make([]edit, 0, len(replacements))
	for idx, id := range replacements {
		if idx < 0 || idx >= len(elements) {
			return nil, fmt.Errorf("shape index %d out of range (%d shapes)", idx, len(elements))
		}
		value := strconv.FormatUint(uint64(id), 10)
		edits = append(edits, setAttr(data, elements[idx], "id", value))
		for _, mirror := range elements[idx].Mirrors {
			edits = append(edits, setAttr(data, mirror, "id", value))
		}
	}
	return applyEdits(data, edits), nil
}

// DuplicateShapeIDs counts ids that repeat an earlier valid id. Invalid
// ids are not counted.
func DuplicateShapeIDs(ids []domain.NonVisualID) int {
	seen := make(map[uint32]struct{}, len(ids))
	dups := 0
	for _, id := range ids {
		if !id.Valid {
			continue
		}
		if _, ok := seen[id.ID]; ok {
			dups++
			continue
		}
		seen[id.ID] = struct{}{}
	}
	return dups
}
