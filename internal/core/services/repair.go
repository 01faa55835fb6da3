package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
	"github.com/custodia-labs/deckmend/internal/logger"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/quality"
	"github.com/custodia-labs/deckmend/internal/stages"
)

// Ensure RepairService implements the interface.
var _ driving.RepairService = (*RepairService)(nil)

// RepairService runs the repair pipeline over buffers and files.
type RepairService struct {
	codec    driven.PackageCodec
	scorer   *quality.Scorer
	settings driving.SettingsService
	reports  driven.ReportStore
	now      func() time.Time
}

// NewRepairService creates a new repair service.
// settings may be nil to always use defaults; reports may be nil to
// disable history.
func NewRepairService(
	codec driven.PackageCodec,
	settings driving.SettingsService,
	reports driven.ReportStore,
) *RepairService {
	return &RepairService{
		codec:    codec,
		scorer:   quality.NewScorer(codec),
		settings: settings,
		reports:  reports,
		now:      time.Now,
	}
}

// RepairBytes repairs an in-memory package.
func (s *RepairService) RepairBytes(ctx context.Context, buf []byte, opts driving.RepairOptions) (*domain.RepairReport, error) {
	settings := s.currentSettings()

	report, err := s.repair(ctx, buf, settings, opts)
	if report == nil {
		return nil, err
	}
	s.record(ctx, settings, report)
	return report, err
}

// RepairFile repairs the package at path and writes the result next to it,
// or to opts.OutputPath when set. The output is written even when a
// diagnostic stage did not pass; it is not written when a stage failed.
func (s *RepairService) RepairFile(ctx context.Context, path string, opts driving.RepairOptions) (*domain.RepairReport, error) {
	settings := s.currentSettings()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	report, err := s.repair(ctx, buf, settings, opts)
	if report == nil {
		return nil, fmt.Errorf("repairing %s: %w", path, err)
	}
	report.InputPath = path

	if err == nil && !opts.DryRun {
		out := opts.OutputPath
		if out == "" {
			out = outputPath(path, settings.OutputSuffix)
		}
		if writeErr := os.WriteFile(out, report.Result.Output, 0o644); writeErr != nil {
			err = fmt.Errorf("writing %s: %w", out, writeErr)
			report.Error = err.Error()
		} else {
			report.OutputPath = out
			logger.Info("repaired %s -> %s", path, out)
		}
	}

	s.record(ctx, settings, report)
	return report, err
}

// RepairBatch expands patterns and repairs every matching file. Files are
// repaired concurrently, each with its own pipeline run. A file that fails
// keeps its error in its report and does not stop the others.
func (s *RepairService) RepairBatch(ctx context.Context, patterns []string, opts driving.RepairOptions) ([]domain.RepairReport, error) {
	settings := s.currentSettings()

	paths, err := expandPatterns(patterns, settings.OutputSuffix)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no packages match %s", domain.ErrNotFound, strings.Join(patterns, ", "))
	}

	// Every file derives its own output path.
	opts.OutputPath = ""

	reports := make([]domain.RepairReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			report, err := s.RepairFile(gctx, path, opts)
			if report == nil {
				report = &domain.RepairReport{
					ID:        uuid.NewString(),
					InputPath: path,
					CreatedAt: s.now(),
					Error:     err.Error(),
				}
			}
			if err != nil {
				logger.Warn("repair of %s failed: %v", path, err)
			}
			reports[i] = *report
			return nil
		})
	}
	_ = g.Wait()

	return reports, ctx.Err()
}

// OutputPathFor returns where RepairFile writes the repair of path.
func (s *RepairService) OutputPathFor(path string) string {
	return outputPath(path, s.currentSettings().OutputSuffix)
}

// repair runs the pipeline and scores both ends. It returns a nil report
// only when the input was rejected before any stage ran.
func (s *RepairService) repair(
	ctx context.Context,
	buf []byte,
	settings domain.RepairSettings,
	opts driving.RepairOptions,
) (*domain.RepairReport, error) {
	pipeline, err := stages.NewDefaultPipeline(s.codec, settings.StageConfig())
	if err != nil {
		return nil, err
	}

	var runOpts []stages.RunOption
	checkIdempotency := settings.CheckIdempotency
	if opts.CheckIdempotency != nil {
		checkIdempotency = *opts.CheckIdempotency
	}
	if checkIdempotency {
		runOpts = append(runOpts, stages.WithIdempotencyCheck())
	}

	result, err := pipeline.Run(ctx, buf, runOpts...)
	if result == nil {
		return nil, err
	}

	report := &domain.RepairReport{
		ID:            uuid.NewString(),
		InputHash:     ooxml.Hash(buf),
		Result:        *result,
		QualityBefore: s.scorer.Score(buf),
		CreatedAt:     s.now(),
	}
	if err != nil {
		report.Error = err.Error()
		return report, err
	}

	after := s.scorer.Score(result.Output)
	report.OutputHash = ooxml.Hash(result.Output)
	report.QualityAfter = &after
	return report, nil
}

// record persists report when history is enabled. A storage failure is
// logged and does not fail the repair.
func (s *RepairService) record(ctx context.Context, settings domain.RepairSettings, report *domain.RepairReport) {
	if s.reports == nil || !settings.History {
		return
	}
	if err := s.reports.Save(ctx, report); err != nil {
		logger.Warn("saving report %s: %v", report.ID, err)
	}
}

func (s *RepairService) currentSettings() domain.RepairSettings {
	if s.settings == nil {
		return domain.DefaultRepairSettings()
	}
	settings, err := s.settings.Get()
	if err != nil || settings == nil {
		logger.Warn("loading settings, using defaults: %v", err)
		return domain.DefaultRepairSettings()
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = domain.DefaultConcurrency
	}
	if settings.OutputSuffix == "" {
		settings.OutputSuffix = domain.DefaultOutputSuffix
	}
	return *settings
}

// outputPath inserts suffix before the extension: deck.pptx becomes
// deck.repaired.pptx.
func outputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// HasOutputSuffix reports whether path already names a repaired file.
func HasOutputSuffix(path, suffix string) bool {
	ext := filepath.Ext(path)
	return suffix != "" && strings.HasSuffix(strings.TrimSuffix(path, ext), suffix)
}

// expandPatterns resolves glob patterns to a sorted, de-duplicated list of
// regular files, skipping earlier repair outputs. A pattern without glob
// metacharacters must name an existing file.
func expandPatterns(patterns []string, suffix string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			if _, statErr := os.Stat(pattern); errors.Is(statErr, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, pattern)
			}
		}
		for _, m := range matches {
			if HasOutputSuffix(m, suffix) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{`)
}
