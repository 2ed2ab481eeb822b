package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/pipeline"
)

var (
	enrichLimit      int
	enrichPlagiarism bool
	enrichForce      bool
	enrichJSON       bool
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Score, embed, and search stored documents",
	Long: `Enrich processes documents that have no content embedding yet:
- Extract features and score them with the full strategy
- Embed the detection context for similarity retrieval
- Optionally collect plagiarism evidence and embed it
- Store the derived attributes under a run ID

The run pauses briefly at every checkpoint and can be interrupted with
Ctrl-C; documents finished so far stay enriched.

Example:
  authentica enrich
  authentica enrich --limit 100 --plagiarism=false
  authentica enrich --force --limit 20`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "maximum documents to process (default from config)")
	enrichCmd.Flags().BoolVar(&enrichPlagiarism, "plagiarism", true, "collect plagiarism evidence when search is configured")
	enrichCmd.Flags().BoolVar(&enrichForce, "force", false, "reprocess documents that are already enriched")
	enrichCmd.Flags().BoolVar(&enrichJSON, "json", false, "print run statistics as JSON")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("plagiarism") {
		cfg.Enrich.Plagiarism = enrichPlagiarism
	}
	cfg.Enrich.Force = enrichForce
	limit := cfg.Enrich.Limit
	if enrichLimit > 0 {
		limit = enrichLimit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() { _ = p.Close() }()

	fmt.Fprintf(os.Stderr, "⚙️  Enriching up to %d documents (index %s, plagiarism search %v)...\n",
		limit, p.EmbeddingIndex(), cfg.Enrich.Plagiarism && p.SearchEnabled())

	stats, err := p.Enricher.EnrichStore(ctx, limit)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	logCacheStats(p)

	if enrichJSON || cfg.Output.JSON {
		return pipeline.RenderJSON(cmd.OutOrStdout(), stats)
	}
	pipeline.RenderEnrichStats(cmd.OutOrStdout(), stats)
	return nil
}

// logCacheStats reports provider cache effectiveness in verbose mode
func logCacheStats(p *pipeline.Pipeline) {
	if stats, ok := p.CacheStats(); ok {
		logger.Debug("Cache: %d hits, %d misses, %d items in memory", stats.Hits, stats.Misses, stats.Items)
	}
}
