package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// addFormatFlag registers the --format flag on cmd.
func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(domain.OutputFormatText), "output format: text, json or yaml")
}

// outputFormat reads and validates the --format flag.
func outputFormat(cmd *cobra.Command) (domain.OutputFormat, error) {
	raw, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("getting format flag: %w", err)
	}
	format := domain.OutputFormat(strings.ToLower(raw))
	if !format.IsValid() {
		return "", fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidInput, raw)
	}
	return format, nil
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format domain.OutputFormat, v any) error {
	switch format {
	case domain.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case domain.OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s is not a structured format", domain.ErrInvalidInput, format)
	}
}

// printReport writes a human-readable summary of one repair.
func printReport(w io.Writer, r *domain.RepairReport) {
	st := newStyles(w)

	name := r.InputPath
	if name == "" {
		name = "<stdin>"
	}
	label := "ok"
	if !r.Succeeded() {
		label = "failed"
	}
	fmt.Fprintf(w, "%s %s\n", st.status(r.Succeeded(), label), st.Title.Render(name))

	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", st.Error.Render(r.Error))
	}
	if r.Result.FailedStage != "" {
		fmt.Fprintf(w, "  failed stage: %s\n", r.Result.FailedStage)
	}
	if r.OutputPath != "" {
		fmt.Fprintf(w, "  output: %s\n", r.OutputPath)
	}

	after := "-"
	if r.QualityAfter != nil {
		after = st.score(r.QualityAfter.Score)
	}
	fmt.Fprintf(w, "  quality: %s -> %s\n", st.score(r.QualityBefore.Score), after)

	for _, m := range r.Result.Metrics {
		mark := st.Muted.Render("unchanged")
		if m.Changed {
			mark = st.Warning.Render("changed")
		}
		line := fmt.Sprintf("  %-16s %-9s %8.3fms", m.Stage, mark, m.DurationMs)
		if m.Passed != nil {
			line += " " + st.status(*m.Passed, passLabel(*m.Passed))
		}
		if stats := formatStats(m.Stats); stats != "" {
			line += " " + st.Muted.Render(stats)
		}
		fmt.Fprintln(w, line)
	}

	if idem := r.Result.Idempotency; idem != nil {
		fmt.Fprintf(w, "  idempotent: %s\n", st.status(idem.Passed, fmt.Sprintf("%t", idem.Passed)))
	}
	if r.ID != "" {
		fmt.Fprintf(w, "  %s\n", st.Muted.Render("report "+r.ID))
	}
}

// printScore writes a human-readable quality score.
func printScore(w io.Writer, name string, s domain.QualityScore) {
	st := newStyles(w)
	fmt.Fprintf(w, "%s %s/%d\n", st.Title.Render(name), st.score(s.Score), domain.MaxQualityScore)

	for _, c := range domain.QualityCategories {
		points, ok := s.Breakdown[c.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-26s %5.1f / %g\n", c.Name, points, c.Weight)
	}
	if len(s.Issues) == 0 {
		return
	}

	width := terminalWidth(w) - 4
	fmt.Fprintln(w, "  issues:")
	for _, issue := range s.Issues {
		fmt.Fprintf(w, "  - %s\n", truncate(issue, width))
	}
}

// printReportList writes one line per report.
func printReportList(w io.Writer, reports []domain.RepairReport) {
	st := newStyles(w)
	if len(reports) == 0 {
		fmt.Fprintln(w, st.Muted.Render("No repair history."))
		return
	}
	for i := range reports {
		r := &reports[i]
		name := r.InputPath
		if name == "" {
			name = "<stdin>"
		}
		label := "ok"
		if !r.Succeeded() {
			label = "failed"
		}
		fmt.Fprintf(w, "%s  %s  %-6s  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			st.status(r.Succeeded(), label), name)
	}
}

func passLabel(passed bool) string {
	if passed {
		return "passed"
	}
	return "not passed"
}

// formatStats renders scalar stats as sorted key=value pairs.
func formatStats(stats map[string]any) string {
	keys := make([]string, 0, len(stats))
	for k, v := range stats {
		switch v.(type) {
		case int, int64, float64, bool, string:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, stats[k]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, width int) string {
	if width < 10 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
