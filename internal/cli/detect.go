package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/pipeline"
)

var (
	detectTitle      string
	detectStrategy   string
	detectPlagiarism bool
	detectVerify     bool
	detectJSON       bool
	detectTimeout    time.Duration
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect [text|-]",
	Short: "Score one abstract for signs of machine generation",
	Long: `Detect analyzes a single text:
- Extract lexical, readability, and vocabulary features
- Score them with a transparent rule table
- Find similar abstracts in the stored corpus
- Optionally search scholarly indexes for copied phrasing

The text is read from the argument, or from stdin when the argument is "-" or absent.

Example:
  authentica detect "Furthermore, it is important to note..."
  authentica detect - --title "Vaccine uptake" < abstract.txt
  authentica detect - --plagiarism --json < abstract.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectTitle, "title", "", "title of the abstract")
	detectCmd.Flags().StringVar(&detectStrategy, "strategy", "", "scoring strategy (full, reduced; default from config)")
	detectCmd.Flags().BoolVar(&detectPlagiarism, "plagiarism", false, "search scholarly indexes for copied phrases")
	detectCmd.Flags().BoolVar(&detectVerify, "verify", false, "check that plagiarism sources are reachable")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print the result as JSON")
	detectCmd.Flags().DurationVar(&detectTimeout, "timeout", 2*time.Minute, "overall detection timeout")
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if detectVerify {
		cfg.Verify.Enabled = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	p, err := pipeline.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() { _ = p.Close() }()

	detector, err := p.DetectorFor(detectStrategy)
	if err != nil {
		return err
	}

	var result *model.DetectionResult
	if detectPlagiarism {
		result, err = detector.Analyze(ctx, text, detectTitle)
	} else {
		result, err = detector.Detect(ctx, text, detectTitle)
	}
	if result == nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if detectJSON || cfg.Output.JSON {
		if rerr := pipeline.RenderJSON(out, result); rerr != nil {
			return rerr
		}
	} else {
		pipeline.RenderSummary(out, result)
	}

	if errors.Is(err, model.ErrInsufficientInput) {
		return err
	}
	return nil
}

// readInput returns the argument text, or stdin for "-" or no argument
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}

	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no text given: pass it as an argument or pipe it on stdin")
		}
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
