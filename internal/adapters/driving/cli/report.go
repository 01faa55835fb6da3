package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect repair history",
	Long:  `List, show and delete the reports recorded for past repairs.`,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent repairs",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a repair report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a repair report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDelete,
}

func init() {
	reportListCmd.Flags().IntP("limit", "n", 20, "maximum number of reports (0 = all)")
	addFormatFlag(reportListCmd)
	addFormatFlag(reportShowCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}

	reports, err := reportService.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}
	if format != domain.OutputFormatText {
		return encode(cmd.OutOrStdout(), format, reports)
	}
	printReportList(cmd.OutOrStdout(), reports)
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	report, err := reportService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting report %s: %w", args[0], err)
	}
	if format != domain.OutputFormatText {
		return encode(cmd.OutOrStdout(), format, report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func runReportDelete(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	if err := reportService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting report %s: %w", args[0], err)
	}
	cmd.Printf("Deleted report %s\n", args[0])
	return nil
}
