// Package ooxml reads and writes OPC presentation packages.
//
// It provides the package codec (zip buffer <-> domain.Package), the
// SHA-256 package hash, path algebra for relationship targets, and the
// part-level models the repair stages work on:
//
//   - Relationships: .rels fragments (Id, Type, Target, TargetMode)
//   - ContentTypes: the package-wide [Content_Types].xml declarations
//   - Shape trees: cNvPr/@id attributes in document order
//   - Relationship references: r:id, r:embed, r:link, ... attributes
//
// Parts that are only read are never re-encoded. Edits to existing XML
// are spliced into the original bytes at the offsets reported by
// encoding/xml, so everything outside the edited attribute values is
// preserved byte for byte.
package ooxml
