package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/pipeline"
	"github.com/ppiankov/authentica/internal/worker"
)

var (
	batchWorkers  int
	batchStrategy string
	batchJSON     bool
	batchTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score many abstracts from a file",
	Long: `Batch scores every abstract in a file:
- One item per line, either plain text or a JSON object
  ({"id": "...", "title": "...", "text": "...", "metadata": {...}})
- Texts shorter than 50 characters are skipped
- Outcomes keep the input order and echo the item metadata

With --workers above 1 items are scored in parallel, sharing a rate limit
on the embedding provider.

Example:
  authentica batch abstracts.jsonl
  authentica batch abstracts.jsonl --workers 8 --json > results.json
  authentica batch abstracts.txt --strategy full`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "", "scoring strategy (full, reduced; default from config)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print outcomes as JSON")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	workers := cfg.Concurrency.Workers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	items, err := worker.ReadItemsFromFile(file)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Authentica Batch Detection\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Items:        %d\n", len(items))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() { _ = p.Close() }()

	detector, err := p.DetectorFor(batchStrategy)
	if err != nil {
		return err
	}

	var outcomes []model.BatchOutcome
	if workers > 1 {
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		outcomes = worker.NewBatchProcessor(detector, workers, limiter, p.RateKey()).Process(ctx, items)
	} else {
		outcomes = detector.DetectBatch(ctx, items)
	}
	logCacheStats(p)

	if batchJSON || cfg.Output.JSON {
		return pipeline.RenderJSON(cmd.OutOrStdout(), outcomes)
	}
	pipeline.RenderBatchSummary(cmd.OutOrStdout(), outcomes)
	return nil
}
