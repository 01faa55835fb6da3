package domain

// StageMetrics records what one stage did to one package.
// InputHash and OutputHash are SHA-256 over the serialized package
// before and after the stage.
type StageMetrics struct {
	Stage      string         `json:"stage" yaml:"stage"`
	InputHash  string         `json:"input_hash" yaml:"input_hash"`
	OutputHash string         `json:"output_hash" yaml:"output_hash"`
	Changed    bool           `json:"changed" yaml:"changed"`
	Stats      map[string]any `json:"stats" yaml:"stats"`
	DurationMs float64        `json:"duration_ms" yaml:"duration_ms"`
	Passed     *bool          `json:"passed,omitempty" yaml:"passed,omitempty"`
}

// IdempotencyResult compares two consecutive full pipeline runs.
type IdempotencyResult struct {
	Passed     bool   `json:"passed" yaml:"passed"`
	FirstHash  string `json:"first_hash" yaml:"first_hash"`
	SecondHash string `json:"second_hash" yaml:"second_hash"`
}

// PipelineResult describes a complete pipeline run.
type PipelineResult struct {
	Success         bool               `json:"success" yaml:"success"`
	FailedStage     string             `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`
	Metrics         []StageMetrics     `json:"metrics" yaml:"metrics"`
	TotalDurationMs float64            `json:"total_duration_ms" yaml:"total_duration_ms"`
	Idempotency     *IdempotencyResult `json:"idempotency,omitempty" yaml:"idempotency,omitempty"`

	// Output is the repaired package, nil if the run stopped on an error.
	Output []byte `json:"-" yaml:"-"`
}

// Stage returns the metrics recorded for the named stage.
func (r *PipelineResult) Stage(name string) (StageMetrics, bool) {
	if r == nil {
		return StageMetrics{}, false
	}
	for i := range r.Metrics {
		if r.Metrics[i].Stage == name {
			return r.Metrics[i], true
		}
	}
	return StageMetrics{}, false
}

// Changed returns true if any stage changed the package.
func (r *PipelineResult) Changed() bool {
	if r == nil {
		return false
	}
	for i := range r.Metrics {
		if r.Metrics[i].Changed {
			return true
		}
	}
	return false
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
