// Package mcp provides an MCP (Model Context Protocol) server adapter for deckmend.
// It lets AI assistants repair and score presentation packages.
package mcp

import "errors"

// ErrMissingRepairService is returned when the repair service is not provided.
var ErrMissingRepairService = errors.New("mcp: repair service is required")

// ErrMissingQualityService is returned when the quality service is not provided.
var ErrMissingQualityService = errors.New("mcp: quality service is required")
