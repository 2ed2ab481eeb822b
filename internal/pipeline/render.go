package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// RenderJSON writes v as indented JSON
func RenderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderSummary writes a human-readable summary of one detection result
func RenderSummary(w io.Writer, r *model.DetectionResult) {
	header(w, "Detection Result")
	if r.Title != "" {
		fmt.Fprintf(w, "  Title:          %s\n", r.Title)
	}
	fmt.Fprintf(w, "  Prediction:     %s\n", r.Prediction)
	fmt.Fprintf(w, "  AI probability: %.3f\n", r.AIProbability)
	fmt.Fprintf(w, "  Confidence:     %.3f\n", r.Confidence)
	fmt.Fprintf(w, "  Strategy:       %s\n", r.Strategy)
	fmt.Fprintln(w)

	if !r.Features.Empty {
		f := r.Features
		fmt.Fprintf(w, "  Words: %d  Sentences: %d  Avg sentence length: %.1f\n",
			f.WordCount, f.SentenceCount, f.AvgSentenceLength)
		fmt.Fprintf(w, "  Connectors: %.4f  Hedging: %.4f  AI phrases: %d\n",
			f.ConnectorDensity, f.HedgingDensity, f.AIPhraseCount)
		fmt.Fprintf(w, "  Unique word ratio: %.3f  Flesch reading ease: %.1f\n",
			f.UniqueWordRatio, f.FleschReadingEase)
		fmt.Fprintln(w)
	}

	if len(r.Reasoning) > 0 {
		fmt.Fprintln(w, "  Reasoning:")
		for _, reason := range r.Reasoning {
			fmt.Fprintf(w, "    • %s\n", reason)
		}
		fmt.Fprintln(w)
	}

	if r.Plagiarism != nil {
		fmt.Fprintf(w, "  Plagiarism score: %.3f (%d matches / %d searches)\n",
			r.PlagiarismScore, r.Plagiarism.MatchesFound, r.Plagiarism.SearchesPerformed)
		for _, m := range r.Plagiarism.Matches {
			fmt.Fprintf(w, "    - [%s] %s (similarity %.2f)\n", m.Authority, m.URL, m.Similarity)
		}
		fmt.Fprintln(w)
	}

	if len(r.Verification) > 0 {
		fmt.Fprintln(w, "  Source verification:")
		for _, v := range r.Verification {
			fmt.Fprintf(w, "    - %s: %s\n", v.URL, verificationStatus(v))
		}
		fmt.Fprintln(w)
	}

	if len(r.Neighbors) > 0 {
		fmt.Fprintln(w, "  Similar abstracts:")
		for _, n := range r.Neighbors {
			label := string(n.Label)
			if label == "" {
				label = "unlabelled"
			}
			fmt.Fprintf(w, "    - %.3f %s (%s)\n", n.Score, n.Title, label)
		}
		fmt.Fprintln(w)
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  ⚠ %s\n", warning)
	}
}

func verificationStatus(v model.VerificationResult) string {
	switch {
	case v.Disallowed:
		return "not checked (robots.txt)"
	case v.IsDead:
		return fmt.Sprintf("dead (%d)", v.StatusCode)
	case v.IsAccessible && v.RedirectURL != "":
		return "accessible via " + v.RedirectURL
	case v.IsAccessible:
		return "accessible"
	case v.Error != "":
		return "unreachable: " + v.Error
	default:
		return fmt.Sprintf("status %d", v.StatusCode)
	}
}

// RenderEnrichStats writes the outcome of an enrichment run
func RenderEnrichStats(w io.Writer, s EnrichStats) {
	header(w, "Enrichment Complete")
	fmt.Fprintf(w, "  Run:              %s\n", s.RunID)
	fmt.Fprintf(w, "  Documents:        %d\n", s.Total)
	fmt.Fprintf(w, "  Processed:        %d\n", s.Processed)
	fmt.Fprintf(w, "  Already enriched: %d\n", s.AlreadyEnriched)
	fmt.Fprintf(w, "  Failed:           %d\n", s.Failed)
	fmt.Fprintf(w, "  Matches stored:   %d\n", s.Matches)
	fmt.Fprintf(w, "  Duration:         %v\n", s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		fmt.Fprintln(w, "  Stopped early: context cancelled")
	}
	fmt.Fprintln(w)
}

// RenderStats writes per-label detection statistics and feature averages
func RenderStats(w io.Writer, stats []model.LabelStats, features []model.FeatureAverages) {
	header(w, "Detection Statistics")
	if len(stats) == 0 {
		fmt.Fprintln(w, "  No scored, labelled documents yet")
		fmt.Fprintln(w)
	}
	for _, s := range stats {
		fmt.Fprintf(w, "  %-14s count %-6d avg %.3f  min %.3f  max %.3f\n",
			s.Label, s.Count, s.AvgAIScore, s.MinAIScore, s.MaxAIScore)
	}

	if len(features) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Feature averages:")
	fmt.Fprintf(w, "  %-14s %8s %10s %8s %8s %8s %8s\n",
		"label", "sent_len", "connectors", "hedging", "unique", "flesch", "phrases")
	for _, f := range features {
		fmt.Fprintf(w, "  %-14s %8.2f %10.4f %8.4f %8.3f %8.1f %8.2f\n",
			f.Label, f.AvgSentenceLength, f.ConnectorDensity, f.HedgingDensity,
			f.UniqueWordRatio, f.FleschReadingEase, f.AIPhraseCount)
	}
	fmt.Fprintln(w)
}

// RenderBatchSummary writes one line per batch outcome followed by totals
func RenderBatchSummary(w io.Writer, outcomes []model.BatchOutcome) {
	detected, skipped, failed, ai := 0, 0, 0, 0
	for _, o := range outcomes {
		name := o.ID
		if name == "" {
			name = fmt.Sprintf("#%d", o.Index)
		}
		switch {
		case o.Skipped:
			skipped++
			fmt.Fprintf(w, "- %s: skipped (shorter than %d characters)\n", name, model.MinBatchTextLength)
		case o.Result == nil:
			failed++
			fmt.Fprintf(w, "✗ %s: %s\n", name, o.Error)
		default:
			detected++
			if o.Result.Prediction == model.PredictionAI {
				ai++
			}
			suffix := ""
			if o.Error != "" {
				suffix = " (" + o.Error + ")"
			}
			fmt.Fprintf(w, "✓ %s: %s %.3f%s\n", name, o.Result.Prediction, o.Result.AIProbability, suffix)
		}
	}

	fmt.Fprintln(w)
	header(w, "Batch Complete")
	fmt.Fprintf(w, "  Total:         %d\n", len(outcomes))
	fmt.Fprintf(w, "  Detected:      %d (%d AI generated)\n", detected, ai)
	fmt.Fprintf(w, "  Skipped:       %d\n", skipped)
	fmt.Fprintf(w, "  Failures:      %d\n", failed)
	fmt.Fprintln(w)
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", strings.TrimSpace(title))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}
