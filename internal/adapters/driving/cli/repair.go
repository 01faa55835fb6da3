package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

var repairCmd = &cobra.Command{
	Use:   "repair <file|glob>...",
	Short: "Repair presentation packages",
	Long: `Run the repair pipeline over one or more .pptx packages.

Each argument is a file path or a glob pattern (** matches across
directories). Repaired packages are written next to their input with the
configured output suffix, e.g. deck.pptx becomes deck.repaired.pptx.

Use - to read a single package from stdin; the repaired package is written
to stdout and the summary to stderr.

Examples:
  deckmend repair deck.pptx
  deckmend repair -o fixed.pptx deck.pptx
  deckmend repair 'decks/**/*.pptx' --format json
  cat deck.pptx | deckmend repair - > fixed.pptx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringP("output", "o", "", "output path (single input only)")
	repairCmd.Flags().Bool("dry-run", false, "run the pipeline without writing output")
	repairCmd.Flags().Bool("check-idempotency", false, "re-run the pipeline on its own output")
	addFormatFlag(repairCmd)
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	if repairService == nil {
		return errors.New("repair service not configured")
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	opts, err := repairOptions(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "-" {
		return repairStdin(cmd, format, opts)
	}
	for _, arg := range args {
		if arg == "-" {
			return fmt.Errorf("%w: - cannot be combined with other inputs", domain.ErrInvalidInput)
		}
	}

	var reports []domain.RepairReport
	if opts.OutputPath != "" {
		if len(args) != 1 {
			return fmt.Errorf("%w: --output needs exactly one input", domain.ErrInvalidInput)
		}
		report, err := repairService.RepairFile(cmd.Context(), args[0], opts)
		if report == nil {
			return err
		}
		reports = []domain.RepairReport{*report}
	} else {
		reports, err = repairService.RepairBatch(cmd.Context(), args, opts)
		if err != nil && len(reports) == 0 {
			return err
		}
	}

	if err := writeReports(cmd.OutOrStdout(), format, reports); err != nil {
		return err
	}
	return failures(reports)
}

func repairOptions(cmd *cobra.Command) (driving.RepairOptions, error) {
	var opts driving.RepairOptions
	var err error

	if opts.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return opts, fmt.Errorf("getting output flag: %w", err)
	}
	if opts.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return opts, fmt.Errorf("getting dry-run flag: %w", err)
	}
	if cmd.Flags().Changed("check-idempotency") {
		check, err := cmd.Flags().GetBool("check-idempotency")
		if err != nil {
			return opts, fmt.Errorf("getting check-idempotency flag: %w", err)
		}
		opts.CheckIdempotency = &check
	}
	return opts, nil
}

// repairStdin repairs one package from stdin and writes the bytes to stdout.
func repairStdin(cmd *cobra.Command, format domain.OutputFormat, opts driving.RepairOptions) error {
	if opts.OutputPath != "" {
		return fmt.Errorf("%w: --output cannot be used with stdin", domain.ErrInvalidInput)
	}
	buf, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	report, err := repairService.RepairBytes(cmd.Context(), buf, opts)
	if report == nil {
		return err
	}

	if err == nil && !opts.DryRun {
		if _, werr := cmd.OutOrStdout().Write(report.Result.Output); werr != nil {
			return fmt.Errorf("writing stdout: %w", werr)
		}
	}
	if perr := writeReports(cmd.ErrOrStderr(), format, []domain.RepairReport{*report}); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	return failures([]domain.RepairReport{*report})
}

func writeReports(w io.Writer, format domain.OutputFormat, reports []domain.RepairReport) error {
	if format != domain.OutputFormatText {
		if len(reports) == 1 {
			return encode(w, format, reports[0])
		}
		return encode(w, format, reports)
	}
	for i := range reports {
		printReport(w, &reports[i])
	}
	return nil
}

func failures(reports []domain.RepairReport) error {
	failed := 0
	for i := range reports {
		if !reports[i].Succeeded() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d packages failed", failed, len(reports))
}
