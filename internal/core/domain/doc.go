// Package domain defines the core business entities for deckmend.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Package: An immutable, ordered set of named parts
//   - Part / PartKind: One entry and its closed role classification
//   - Relationship, ContentTypeOverride, NonVisualID: Part-level models
//   - StageMetrics / PipelineResult: What a repair run did
//   - QualityScore: Structural health of a package
//   - RepairReport: The persisted record of a repair
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
