package plagiarism

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/authentica/internal/model"
	"github.com/ppiankov/authentica/internal/search"
)

const scenarioText = "Furthermore, the results indicate significant improvement. Moreover, it is important to note that outcomes varied."

// fakeProvider echoes each phrase back as a matching arxiv.org result
type fakeProvider struct {
	requests []search.Request
	failOn   map[int]bool // zero-based call indexes that fail
	results  func(phrase string) []search.Result
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, req search.Request) ([]search.Result, error) {
	call := len(p.requests)
	p.requests = append(p.requests, req)
	if p.failOn[call] {
		return nil, errors.New("provider unavailable")
	}
	phrase := strings.Trim(req.Query, `"`)
	if p.results != nil {
		return p.results(phrase), nil
	}
	return []search.Result{{
		URL:     "https://arxiv.org/abs/" + phrase[:5],
		Title:   "Echo",
		Content: phrase,
	}}, nil
}

func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var sleeps []time.Duration
	orig := collectSleepFunc
	collectSleepFunc = func(d time.Duration) { sleeps = append(sleeps, d) }
	t.Cleanup(func() { collectSleepFunc = orig })
	return &sleeps
}

func testConfig() model.SearchConfig {
	return model.DefaultConfig().Search
}

func TestCollector_AllMatch(t *testing.T) {
	sleeps := recordSleeps(t)
	provider := &fakeProvider{}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "Title")

	if report.SearchesPerformed != 3 {
		t.Errorf("Expected 3 searches, got %d", report.SearchesPerformed)
	}
	if report.MatchesFound != 3 || len(report.Matches) != 3 {
		t.Errorf("Expected 3 matches, got %d (%d records)", report.MatchesFound, len(report.Matches))
	}
	if report.Score != 1.0 {
		t.Errorf("Expected score 1.0, got %f", report.Score)
	}
	if len(*sleeps) != 3 {
		t.Errorf("Expected a pause after each search, got %d", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != 500*time.Millisecond {
			t.Errorf("Expected 500ms throttle, got %v", d)
		}
	}

	req := provider.requests[0]
	if req.Query != `"Furthermore, the results indicate significant improvement"` {
		t.Errorf("Expected quoted first sentence, got %q", req.Query)
	}
	if req.MaxResults != 5 || req.Depth != "basic" {
		t.Errorf("Unexpected request options %+v", req)
	}
	if len(req.IncludeDomains) != 4 || req.IncludeDomains[0] != "pubmed.ncbi.nlm.nih.gov" {
		t.Errorf("Unexpected domains %v", req.IncludeDomains)
	}

	m := report.Matches[0]
	if !strings.HasPrefix(m.ID, "match_") || len(m.ID) != len("match_")+8 {
		t.Errorf("Unexpected match id %q", m.ID)
	}
	if m.Similarity != 1.0 {
		t.Errorf("Expected similarity 1.0, got %f", m.Similarity)
	}
}

func TestCollector_FailedSearchNotCounted(t *testing.T) {
	sleeps := recordSleeps(t)
	provider := &fakeProvider{failOn: map[int]bool{1: true}}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "")

	if len(provider.requests) != 3 {
		t.Fatalf("Expected 3 attempts, got %d", len(provider.requests))
	}
	if report.SearchesPerformed != 2 {
		t.Errorf("Expected 2 successful searches, got %d", report.SearchesPerformed)
	}
	if report.Errors != 1 {
		t.Errorf("Expected 1 failed search, got %d", report.Errors)
	}
	if report.Score != float64(report.MatchesFound)/2 {
		t.Errorf("Expected score found/2, got %f", report.Score)
	}
	if len(*sleeps) != 2 {
		t.Errorf("Expected pauses only after successful searches, got %d", len(*sleeps))
	}
}

func TestCollector_AllSearchesFail(t *testing.T) {
	recordSleeps(t)
	provider := &fakeProvider{failOn: map[int]bool{0: true, 1: true, 2: true}}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "")

	if report.SearchesPerformed != 0 || report.Score != 0.0 {
		t.Errorf("Expected zero searches and score, got %+v", report)
	}
	if report.Errors != 3 {
		t.Errorf("Expected 3 errors, got %d", report.Errors)
	}
}

func TestCollector_DropsResultsOutsideWhitelist(t *testing.T) {
	recordSleeps(t)
	provider := &fakeProvider{results: func(phrase string) []search.Result {
		return []search.Result{
			{URL: "https://example.com/copy", Content: phrase},
			{URL: "https://www.biorxiv.org/content/1", Content: phrase},
		}
	}}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "")

	if report.MatchesFound != 3 {
		t.Errorf("Expected only whitelisted matches (3), got %d", report.MatchesFound)
	}
	for _, m := range report.Matches {
		if strings.Contains(m.URL, "example.com") {
			t.Errorf("Unexpected non-whitelisted match %s", m.URL)
		}
	}
}

func TestCollector_LowOverlapNotMatched(t *testing.T) {
	recordSleeps(t)
	provider := &fakeProvider{results: func(phrase string) []search.Result {
		return []search.Result{{
			URL:     "https://arxiv.org/abs/2",
			Content: phrase + " with many additional unrelated words appended to the snippet",
		}}
	}}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "")

	if report.SearchesPerformed != 3 || report.MatchesFound != 0 || report.Score != 0 {
		t.Errorf("Expected 3 searches without matches, got %+v", report)
	}
}

func TestCollector_ScoreIsRatioOfHitsToSearches(t *testing.T) {
	recordSleeps(t)
	// Two matching results per search
	provider := &fakeProvider{results: func(phrase string) []search.Result {
		return []search.Result{
			{URL: "https://arxiv.org/abs/a", Content: phrase},
			{URL: "https://arxiv.org/abs/b", Content: phrase},
		}
	}}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), scenarioText, "")

	if report.SearchesPerformed > 3 {
		t.Errorf("Searches exceed phrases attempted: %d", report.SearchesPerformed)
	}
	want := float64(report.MatchesFound) / float64(report.SearchesPerformed)
	if report.Score != want {
		t.Errorf("Expected score %f, got %f", want, report.Score)
	}

	unique := Dedupe(report.Matches)
	if len(unique) != 2 {
		t.Errorf("Expected 2 unique match ids, got %d", len(unique))
	}
	if unique[0].Phrase != report.Matches[0].Phrase {
		t.Error("Expected first phrase to win deduplication")
	}
}

func TestCollector_ShortText(t *testing.T) {
	recordSleeps(t)
	provider := &fakeProvider{}

	report := NewCollector(provider, testConfig()).Collect(context.Background(), "Tiny.", "")

	if len(provider.requests) != 0 {
		t.Errorf("Expected no searches, got %d", len(provider.requests))
	}
	if report.Score != 0 || report.Matches == nil {
		t.Errorf("Expected empty report with non-nil matches, got %+v", report)
	}
}

func TestCollector_NilProvider(t *testing.T) {
	report := NewCollector(nil, testConfig()).Collect(context.Background(), scenarioText, "")
	if report.SearchesPerformed != 0 || report.Score != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestCollector_StopsOnCancelledContext(t *testing.T) {
	recordSleeps(t)
	provider := &fakeProvider{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewCollector(provider, testConfig()).Collect(ctx, scenarioText, "")
	if len(provider.requests) != 0 || report.SearchesPerformed != 0 {
		t.Errorf("Expected no searches after cancellation, got %d", len(provider.requests))
	}
}
