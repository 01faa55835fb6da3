package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>...",
	Short: "Score the structural health of packages",
	Long: `Compute a 0-100 structural quality score for each package without
modifying it. Use - to score a package read from stdin.

With --min, the command fails when any package scores below the threshold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Int("min", 0, "fail when a score is below this threshold")
	addFormatFlag(scoreCmd)
	rootCmd.AddCommand(scoreCmd)
}

// scoredPackage pairs a score with the input it was computed for.
type scoredPackage struct {
	Path  string              `json:"path" yaml:"path"`
	Score domain.QualityScore `json:"quality" yaml:"quality"`
}

func runScore(cmd *cobra.Command, args []string) error {
	if qualityService == nil {
		return errors.New("quality service not configured")
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	minScore, err := cmd.Flags().GetInt("min")
	if err != nil {
		return fmt.Errorf("getting min flag: %w", err)
	}

	results := make([]scoredPackage, 0, len(args))
	for _, arg := range args {
		var score domain.QualityScore
		if arg == "-" {
			buf, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			score = qualityService.ScoreBytes(cmd.Context(), buf)
			arg = "<stdin>"
		} else {
			score, err = qualityService.ScoreFile(cmd.Context(), arg)
			if err != nil {
				return err
			}
		}
		results = append(results, scoredPackage{Path: arg, Score: score})
	}

	if format == domain.OutputFormatText {
		for _, r := range results {
			printScore(cmd.OutOrStdout(), r.Path, r.Score)
		}
	} else if err := encode(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}

	below := 0
	for _, r := range results {
		if r.Score.Score < minScore {
			below++
		}
	}
	if below > 0 {
		return fmt.Errorf("%d of %d packages scored below %d", below, len(results), minScore)
	}
	return nil
}
