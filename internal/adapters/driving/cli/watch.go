package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/adapters/driving/watch"
	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Repair packages as they appear in a directory",
	Long: `Watch a directory and repair every .pptx written to it once the file
has been quiet for the debounce interval. Repaired packages are written next
to their input with the configured output suffix and are not repaired again.

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet period before a file is repaired")
	watchCmd.Flags().Bool("check-idempotency", false, "re-run the pipeline on its own output")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if repairService == nil {
		return errors.New("repair service not configured")
	}

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("getting debounce flag: %w", err)
	}
	var opts driving.RepairOptions
	if cmd.Flags().Changed("check-idempotency") {
		check, err := cmd.Flags().GetBool("check-idempotency")
		if err != nil {
			return fmt.Errorf("getting check-idempotency flag: %w", err)
		}
		opts.CheckIdempotency = &check
	}

	suffix := domain.DefaultOutputSuffix
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			suffix = settings.OutputSuffix
		}
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(repairService, args[0],
		watch.WithDebounce(debounce),
		watch.WithOutputSuffix(suffix),
		watch.WithRepairOptions(opts),
		watch.WithResultFunc(func(path string, report *domain.RepairReport, err error) {
			if report != nil {
				printReport(out, report)
				return
			}
			fmt.Fprintf(out, "%s: %v\n", path, err)
		}),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
