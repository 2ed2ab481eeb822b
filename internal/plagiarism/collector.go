package plagiarism

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/search"
)

const (
	// maxPhrases is how many leading key phrases are searched
	maxPhrases = 3

	// minSearchLength skips phrases this short or shorter
	minSearchLength = 10

	snippetLength = 200
)

// collectSleepFunc blocks between searches (injectable for tests)
var collectSleepFunc = time.Sleep

// Collector searches key phrases against a restricted search provider and scores overlap
type Collector struct {
	provider        search.Provider
	domains         []string
	maxResults      int
	depth           string
	throttle        time.Duration
	threshold       float64
	minPhraseLength int
	maxPhrases      int
}

// NewCollector creates a collector from the search config section
func NewCollector(provider search.Provider, cfg model.SearchConfig) *Collector {
	c := &Collector{
		provider:        provider,
		domains:         cfg.IncludeDomains,
		maxResults:      cfg.MaxResults,
		depth:           cfg.Depth,
		throttle:        cfg.Throttle,
		threshold:       cfg.MatchThreshold,
		minPhraseLength: cfg.MinPhraseLength,
		maxPhrases:      cfg.MaxPhrases,
	}

	if len(c.domains) == 0 {
		c.domains = model.ScholarlyDomains
	}
	if c.maxResults <= 0 {
		c.maxResults = 5
	}
	if c.depth == "" {
		c.depth = "basic"
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	if c.minPhraseLength <= 0 {
		c.minPhraseLength = extract.DefaultPhraseMinLength
	}
	if c.maxPhrases <= 0 {
		c.maxPhrases = maxPhrases
	}

	return c
}

// Collect searches the leading key phrases of text and reports overlapping sources.
// A failed search is logged and skipped without counting toward SearchesPerformed.
func (c *Collector) Collect(ctx context.Context, text, title string) model.PlagiarismReport {
	report := model.PlagiarismReport{Matches: []model.PlagiarismMatch{}}
	if c.provider == nil {
		return report
	}

	phrases := extract.SelectKeyPhrases(text, c.minPhraseLength)
	if len(phrases) > c.maxPhrases {
		phrases = phrases[:c.maxPhrases]
	}

	for _, phrase := range phrases {
		if len([]rune(phrase.Text)) <= minSearchLength {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		results, err := c.provider.Search(ctx, search.Request{
			Query:          search.ExactPhrase(phrase.Text),
			IncludeDomains: c.domains,
			MaxResults:     c.maxResults,
			Depth:          c.depth,
		})
		if err != nil {
			logger.Warn("Search failed for phrase %q: %v", truncate(phrase.Text, 60), err)
			report.Errors++
			continue
		}

		report.SearchesPerformed++

		for _, r := range results {
			if !search.InDomains(r.URL, c.domains) {
				logger.Debug("Dropping result outside whitelist: %s", r.URL)
				continue
			}
			if !SimilarAt(phrase.Text, r.Content, c.threshold) {
				continue
			}
			report.MatchesFound++
			report.Matches = append(report.Matches, model.PlagiarismMatch{
				ID:         model.MatchID(r.URL),
				Phrase:     phrase.Text,
				URL:        r.URL,
				Title:      r.Title,
				Snippet:    truncate(r.Content, snippetLength),
				Similarity: Jaccard(phrase.Text, r.Content),
			})
		}

		if c.throttle > 0 {
			collectSleepFunc(c.throttle)
		}
	}

	if report.SearchesPerformed > 0 {
		report.Score = float64(report.MatchesFound) / float64(report.SearchesPerformed)
	}

	logger.Debug("Plagiarism check %q: %d matches over %d searches (%d failed)",
		truncate(title, 40), report.MatchesFound, report.SearchesPerformed, report.Errors)

	return report
}

// Dedupe keeps the first match for each id
func Dedupe(matches []model.PlagiarismMatch) []model.PlagiarismMatch {
	seen := make(map[string]bool, len(matches))
	unique := make([]model.PlagiarismMatch, 0, len(matches))
	for _, m := range matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		unique = append(unique, m)
	}
	return unique
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}
