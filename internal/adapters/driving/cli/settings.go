package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage repair settings",
	Long: `View and change the settings that shape every repair.

Settings are stored in ~/.deckmend/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by key. Booleans accept true/false, lists are
comma separated. Run 'deckmend settings keys' for the accepted keys.

Examples:
  deckmend settings set repair.concurrency 8
  deckmend settings set repair.check_idempotency true
  deckmend settings set stages.content-types.extra_defaults "svg=image/svg+xml,webp=image/webp"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Repair]")
	cmd.Printf("  Check idempotency: %t\n", settings.CheckIdempotency)
	cmd.Printf("  Output suffix: %s\n", settings.OutputSuffix)
	cmd.Printf("  Concurrency: %d\n", settings.Concurrency)
	cmd.Printf("  History: %s\n", enabled(settings.History))
	cmd.Println()

	cmd.Println("[Stages]")
	cmd.Printf("  nv-ids include layouts: %t\n", settings.IncludeLayouts)
	cmd.Printf("  content-types extra defaults: %s\n", list(settings.ExtraDefaults))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	defaults := settingsService.GetDefaults()
	for _, key := range settingsService.Keys() {
		cmd.Printf("%-40s default: %s\n", key, defaultFor(defaults, key))
	}
	return nil
}

func defaultFor(d domain.RepairSettings, key string) string {
	switch {
	case strings.HasSuffix(key, "check_idempotency"):
		return fmt.Sprint(d.CheckIdempotency)
	case strings.HasSuffix(key, "output_suffix"):
		return d.OutputSuffix
	case strings.HasSuffix(key, "concurrency"):
		return fmt.Sprint(d.Concurrency)
	case strings.HasSuffix(key, "history"):
		return fmt.Sprint(d.History)
	case strings.HasSuffix(key, "include_layouts"):
		return fmt.Sprint(d.IncludeLayouts)
	case strings.HasSuffix(key, "extra_defaults"):
		return list(d.ExtraDefaults)
	default:
		return "-"
	}
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func list(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
