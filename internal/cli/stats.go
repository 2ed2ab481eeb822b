package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ppiankov/authentica/internal/pipeline"
	"github.com/ppiankov/authentica/internal/store"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show detection statistics for the stored corpus",
	Long: `Stats compares enriched documents by label: how many were scored,
their average, minimum, and maximum AI probability, and the average
value of each linguistic feature.

Example:
  authentica stats
  authentica stats --db corpus.db --json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	labels, err := st.DetectionStats(ctx)
	if err != nil {
		return err
	}
	features, err := st.FeatureComparison(ctx)
	if err != nil {
		return err
	}

	if statsJSON || cfg.Output.JSON {
		return pipeline.RenderJSON(cmd.OutOrStdout(), map[string]interface{}{
			"labels":   labels,
			"features": features,
		})
	}
	pipeline.RenderStats(cmd.OutOrStdout(), labels, features)
	return nil
}
