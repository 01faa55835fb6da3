package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

// RepairInput is the input schema for the repair_package tool.
type RepairInput struct {
	Data             string `json:"data,omitempty" jsonschema:"base64-encoded .pptx package to repair"`
	Path             string `json:"path,omitempty" jsonschema:"path of a .pptx file to repair in place of data; the result is written next to it"`
	CheckIdempotency bool   `json:"check_idempotency,omitempty" jsonschema:"re-run the pipeline on its output and compare hashes"`
}

// RepairOutput is the output schema for the repair_package tool.
type RepairOutput struct {
	ReportID      string         `json:"report_id"`
	Success       bool           `json:"success"`
	FailedStage   string         `json:"failed_stage,omitempty"`
	InputHash     string         `json:"input_hash"`
	OutputHash    string         `json:"output_hash,omitempty"`
	OutputPath    string         `json:"output_path,omitempty"`
	QualityBefore int            `json:"quality_before"`
	QualityAfter  int            `json:"quality_after"`
	Idempotent    *bool          `json:"idempotent,omitempty"`
	Stages        []StageSummary `json:"stages"`
	Data          string         `json:"data,omitempty"`
}

// StageSummary is one stage's outcome in a repair.
type StageSummary struct {
	Stage      string  `json:"stage"`
	Changed    bool    `json:"changed"`
	Passed     *bool   `json:"passed,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// ScoreInput is the input schema for the score_package tool.
type ScoreInput struct {
	Data string `json:"data,omitempty" jsonschema:"base64-encoded .pptx package to score"`
	Path string `json:"path,omitempty" jsonschema:"path of a .pptx file to score in place of data"`
}

// ScoreOutput is the output schema for the score_package tool.
type ScoreOutput struct {
	Score     int                `json:"score"`
	Issues    []string           `json:"issues"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repair_package",
		Description: "Repair a presentation package and report what each stage changed",
	}, s.handleRepair)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "score_package",
		Description: "Score the structural health of a presentation package from 0 to 100",
	}, s.handleScore)
}

// handleRepair handles the repair_package tool invocation.
func (s *Server) handleRepair(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RepairInput,
) (*mcp.CallToolResult, RepairOutput, error) {
	opts := driving.RepairOptions{}
	if input.CheckIdempotency {
		check := true
		opts.CheckIdempotency = &check
	}

	var report *domain.RepairReport
	switch {
	case input.Path != "" && input.Data != "":
		return nil, RepairOutput{}, fmt.Errorf("%w: give data or path, not both", domain.ErrInvalidInput)
	case input.Path != "":
		r, err := s.ports.Repair.RepairFile(ctx, input.Path, opts)
		if r == nil {
			return nil, RepairOutput{}, err
		}
		report = r
	default:
		buf, err := decodeData(input.Data)
		if err != nil {
			return nil, RepairOutput{}, err
		}
		// A stage error still yields a report, returned as a failed result.
		r, err := s.ports.Repair.RepairBytes(ctx, buf, opts)
		if r == nil {
			return nil, RepairOutput{}, err
		}
		report = r
	}

	output := repairOutput(report)
	if input.Path == "" && report.Error == "" {
		output.Data = base64.StdEncoding.EncodeToString(report.Result.Output)
	}
	return nil, output, nil
}

// handleScore handles the score_package tool invocation.
func (s *Server) handleScore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScoreInput,
) (*mcp.CallToolResult, ScoreOutput, error) {
	var score domain.QualityScore
	switch {
	case input.Path != "" && input.Data != "":
		return nil, ScoreOutput{}, fmt.Errorf("%w: give data or path, not both", domain.ErrInvalidInput)
	case input.Path != "":
		var err error
		score, err = s.ports.Quality.ScoreFile(ctx, input.Path)
		if err != nil {
			return nil, ScoreOutput{}, err
		}
	default:
		buf, err := decodeData(input.Data)
		if err != nil {
			return nil, ScoreOutput{}, err
		}
		score = s.ports.Quality.ScoreBytes(ctx, buf)
	}

	return nil, ScoreOutput{
		Score:     score.Score,
		Issues:    score.Issues,
		Breakdown: score.Breakdown,
	}, nil
}

func decodeData(data string) ([]byte, error) {
	if data == "" {
		return nil, domain.ErrEmptyBuffer
	}
	buf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: data is not valid base64: %v", domain.ErrInvalidInput, err)
	}
	return buf, nil
}

func repairOutput(report *domain.RepairReport) RepairOutput {
	output := RepairOutput{
		ReportID:      report.ID,
		Success:       report.Succeeded(),
		FailedStage:   report.Result.FailedStage,
		InputHash:     report.InputHash,
		OutputHash:    report.OutputHash,
		OutputPath:    report.OutputPath,
		QualityBefore: report.QualityBefore.Score,
		Stages:        make([]StageSummary, len(report.Result.Metrics)),
	}
	if report.QualityAfter != nil {
		output.QualityAfter = report.QualityAfter.Score
	}
	if report.Result.Idempotency != nil {
		passed := report.Result.Idempotency.Passed
		output.Idempotent = &passed
	}
	for i, m := range report.Result.Metrics {
		output.Stages[i] = StageSummary{
			Stage:      m.Stage,
			Changed:    m.Changed,
			Passed:     m.Passed,
			DurationMs: m.DurationMs,
		}
	}
	return output
}
