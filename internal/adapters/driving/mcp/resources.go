package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for deckmend resources.
	uriScheme = "deckmend://"

	// recentReports bounds the report list resource.
	recentReports = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "reports",
		Name:        "reports",
		Description: "Most recent repair reports",
		MIMEType:    "application/json",
	}, s.handleReportsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "reports/{reportId}",
		Name:        "report",
		Description: "A single repair report with per-stage metrics",
		MIMEType:    "application/json",
	}, s.handleReportResource)
}

// handleReportsResource returns a summary of recent repairs.
func (s *Server) handleReportsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reports == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	reports, err := s.ports.Reports.List(ctx, recentReports)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	type reportInfo struct {
		ID          string `json:"id"`
		URI         string `json:"uri"`
		InputPath   string `json:"input_path,omitempty"`
		Success     bool   `json:"success"`
		FailedStage string `json:"failed_stage,omitempty"`
		Before      int    `json:"quality_before"`
		After       *int   `json:"quality_after,omitempty"`
		CreatedAt   string `json:"created_at"`
	}

	infos := make([]reportInfo, len(reports))
	for i := range reports {
		r := &reports[i]
		infos[i] = reportInfo{
			ID:          r.ID,
			URI:         uriScheme + "reports/" + r.ID,
			InputPath:   r.InputPath,
			Success:     r.Succeeded(),
			FailedStage: r.Result.FailedStage,
			Before:      r.QualityBefore.Score,
			CreatedAt:   r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if r.QualityAfter != nil {
			after := r.QualityAfter.Score
			infos[i].After = &after
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling reports: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleReportResource returns one full report.
func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reports == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractReportID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Reports.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling report: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractReportID extracts the report ID from a URI like deckmend://reports/{reportId}.
func extractReportID(uri string) string {
	const prefix = uriScheme + "reports/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
