// Package stages provides the repair pipeline and its stage registry.
package stages

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/logger"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// Pipeline chains repair stages and runs them in order.
// A Pipeline holds no per-run state and may be shared between goroutines
// as long as its stages are stateless.
type Pipeline struct {
	codec  driven.PackageCodec
	stages []driven.RepairStage
}

// NewPipeline creates a new repair pipeline with the given stages.
// Stages are executed in the order provided.
func NewPipeline(codec driven.PackageCodec, stages ...driven.RepairStage) *Pipeline {
	return &Pipeline{
		codec:  codec,
		stages: stages,
	}
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage driven.RepairStage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

type runConfig struct {
	checkIdempotency bool
}

// RunOption configures a single Run.
type RunOption func(*runConfig)

// WithIdempotencyCheck re-runs the pipeline on its own output and records
// whether both final buffers hash the same.
func WithIdempotencyCheck() RunOption {
	return func(c *runConfig) {
		c.checkIdempotency = true
	}
}

// snapshot is a package together with its encoded bytes and their hash.
type snapshot struct {
	pkg  *domain.Package
	buf  []byte
	hash string
}

// Run decodes buf, applies every stage and re-encodes the result.
//
// A stage error stops the run: the partial result is returned together
// with a *domain.StageError. A diagnostic stage that does not pass marks
// the result failed but does not stop the run.
func (p *Pipeline) Run(ctx context.Context, buf []byte, opts ...RunOption) (*domain.PipelineResult, error) {
	if len(buf) == 0 {
		return nil, domain.ErrEmptyBuffer
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	result, err := p.run(ctx, buf)
	if err != nil {
		return result, err
	}

	if cfg.checkIdempotency {
		result.Idempotency = p.checkIdempotency(ctx, result.Output)
		if !result.Idempotency.Passed {
			logger.Warn("idempotency check failed: %s != %s",
				result.Idempotency.FirstHash, result.Idempotency.SecondHash)
		}
	}
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, buf []byte) (*domain.PipelineResult, error) {
	result := &domain.PipelineResult{
		Success: true,
		Metrics: make([]domain.StageMetrics, 0, len(p.stages)),
	}
	logger.Section("Repair pipeline")

	pkg, err := p.codec.Decode(buf)
	if err != nil {
		return p.fail(result, p.firstStage(), err)
	}
	current, err := p.encode(pkg)
	if err != nil {
		return p.fail(result, p.firstStage(), err)
	}

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return p.fail(result, stage.Name(), err)
		}

		logger.Stage(stage.Name(), "starting (input %s)", short(current.hash))
		start := time.Now()

		outcome, err := stage.Apply(ctx, current.pkg)
		if err != nil {
			return p.fail(result, stage.Name(), err)
		}
		if outcome == nil || outcome.Package == nil {
			return p.fail(result, stage.Name(),
				domain.Invariantf(stage.Name(), "", "stage returned no package"))
		}

		next := current
		if outcome.Package != current.pkg {
			next, err = p.encode(outcome.Package)
			if err != nil {
				return p.fail(result, stage.Name(), err)
			}
		}
		duration := float64(time.Since(start).Microseconds()) / 1000

		stats := outcome.Stats
		if stats == nil {
			stats = map[string]any{}
		}
		metrics := domain.StageMetrics{
			Stage:      stage.Name(),
			InputHash:  current.hash,
			OutputHash: next.hash,
			Changed:    current.hash != next.hash,
			Stats:      stats,
			DurationMs: duration,
			Passed:     outcome.Passed,
		}
		result.Metrics = append(result.Metrics, metrics)
		result.TotalDurationMs += duration

		logger.Stage(stage.Name(), "changed=%t duration=%.3fms stats=%v", metrics.Changed, duration, stats)

		if outcome.Passed != nil && !*outcome.Passed {
			logger.Stage(stage.Name(), "diagnostic did not pass")
			if result.FailedStage == "" {
				result.FailedStage = stage.Name()
			}
			result.Success = false
		}
		current = next
	}

	result.Output = current.buf
	return result, nil
}

// checkIdempotency runs the pipeline again on output and compares hashes.
func (p *Pipeline) checkIdempotency(ctx context.Context, output []byte) *domain.IdempotencyResult {
	check := &domain.IdempotencyResult{FirstHash: ooxml.Hash(output)}
	logger.Debug("running idempotency check")

	second, err := p.run(ctx, output)
	if err != nil {
		logger.Warn("idempotency re-run failed: %v", err)
		return check
	}
	check.SecondHash = ooxml.Hash(second.Output)
	check.Passed = check.FirstHash == check.SecondHash
	return check
}

func (p *Pipeline) encode(pkg *domain.Package) (snapshot, error) {
	buf, err := p.codec.Encode(pkg)
	if err != nil {
		return snapshot{}, fmt.Errorf("encoding package: %w", err)
	}
	return snapshot{pkg: pkg, buf: buf, hash: ooxml.Hash(buf)}, nil
}

// firstStage is charged with failures before any stage has run.
func (p *Pipeline) firstStage() string {
	if len(p.stages) == 0 {
		return ""
	}
	return p.stages[0].Name()
}

func (p *Pipeline) fail(result *domain.PipelineResult, stage string, err error) (*domain.PipelineResult, error) {
	logger.Warn("stage %s failed: %v", stage, err)
	result.Success = false
	if result.FailedStage == "" {
		result.FailedStage = stage
	}
	return result, &domain.StageError{Stage: stage, Err: err}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
