// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PackageCodec: Decodes zip buffers into packages and encodes them back
//   - RepairStage: One step of the repair pipeline
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ReportStore: Repair history. Without it, reports are not persisted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, stage, or ooxml package
package driven
