package domain

import "time"

// RepairReport is the persisted record of one repair.
type RepairReport struct {
	// ID is a unique identifier for the report.
	ID string `json:"id" yaml:"id"`

	// InputPath is where the package was read from; empty for in-memory input.
	InputPath string `json:"input_path,omitempty" yaml:"input_path,omitempty"`

	// OutputPath is where the repaired package was written.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// InputHash is the SHA-256 of the raw input buffer.
	InputHash string `json:"input_hash" yaml:"input_hash"`

	// OutputHash is the SHA-256 of the repaired buffer.
	OutputHash string `json:"output_hash,omitempty" yaml:"output_hash,omitempty"`

	// Result is the pipeline result.
	Result PipelineResult `json:"result" yaml:"result"`

	// QualityBefore scores the input package.
	QualityBefore QualityScore `json:"quality_before" yaml:"quality_before"`

	// QualityAfter scores the repaired package.
	QualityAfter *QualityScore `json:"quality_after,omitempty" yaml:"quality_after,omitempty"`

	// Error holds the message of the error that stopped the run.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// CreatedAt is when the repair ran.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Succeeded returns true if the pipeline completed and every check passed.
func (r *RepairReport) Succeeded() bool {
	return r != nil && r.Error == "" && r.Result.Success
}
