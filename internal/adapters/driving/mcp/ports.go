package mcp

import (
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repair runs the repair pipeline.
	Repair driving.RepairService

	// Quality scores packages.
	Quality driving.QualityService

	// Reports exposes repair history. Optional.
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Repair == nil {
		return ErrMissingRepairService
	}
	if p.Quality == nil {
		return ErrMissingQualityService
	}
	return nil
}
