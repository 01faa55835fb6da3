// Package cli provides the deckmend command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
	"github.com/custodia-labs/deckmend/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services used by commands. Set with SetServices before Execute.
var (
	repairService   driving.RepairService
	qualityService  driving.QualityService
	reportService   driving.ReportService
	settingsService driving.SettingsService
)

// Services groups the driving ports the commands need.
type Services struct {
	Repair   driving.RepairService
	Quality  driving.QualityService
	Reports  driving.ReportService
	Settings driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "deckmend",
	Short: "Repair structurally broken presentation packages",
	Long: `deckmend normalises generated .pptx packages into structurally valid,
internally consistent packages.

It rewrites absolute relationship targets, makes shape ids unique per slide,
reconciles [Content_Types].xml with the parts actually present, and reports
relationship references that do not resolve.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline stage to stderr")
}

// SetServices injects the services used by commands.
func SetServices(s Services) {
	repairService = s.Repair
	qualityService = s.Quality
	reportService = s.Reports
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
