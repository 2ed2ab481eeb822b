package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/ingest"
	"github.com/ppiankov/authentica/internal/store"
)

var ingestDomain string

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <csv>",
	Short: "Load a labelled corpus of abstracts into the store",
	Long: `Ingest reads a CSV file with abstract, title, and label columns.

Each row becomes a document with a stable content-derived ID, its keywords,
and the linguistic patterns it shows. Re-ingesting the same file updates
documents in place. Rows with missing or very short abstracts are skipped.

Example:
  authentica ingest covid_abstracts.csv
  authentica ingest abstracts.csv --domain oncology --db corpus.db`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDomain, "domain", ingest.DefaultDomain, "domain tag for ingested documents")
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintf(os.Stderr, "⚙️  Ingesting %s into %s...\n", args[0], st.Path())

	in := ingest.NewIngester(extract.NewFeatureExtractorFromConfig(cfg.Features), st, ingestDomain)
	stats, err := in.IngestFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	total, err := st.CountDocuments(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(out, "  Ingestion Complete")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Rows:        %d\n", stats.Rows)
	fmt.Fprintf(out, "  Loaded:      %d\n", stats.Loaded)
	fmt.Fprintf(out, "  Malformed:   %d\n", stats.Malformed)
	fmt.Fprintf(out, "  Failed:      %d\n", stats.Failed)
	fmt.Fprintf(out, "  In store:    %d\n", total)
	fmt.Fprintln(out)
	return nil
}
