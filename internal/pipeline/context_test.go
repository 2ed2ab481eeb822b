package pipeline

import (
	"strings"
	"testing"

	"github.com/ppiankov/authentica/internal/model"
)

func TestDetectionContext(t *testing.T) {
	doc := model.Document{
		Title:    "Mask mandates",
		Text:     "Abstract body.",
		Keywords: []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10", "k11", "k12"},
		Patterns: []string{"high_connectors", "formal_phrases"},
	}
	f := model.FeatureSet{ConnectorDensity: 0.03, HedgingDensity: 0.01, AIPhraseCount: 2}

	got := DetectionContext(doc, f)

	want := "Title: Mask mandates\n\nAbstract: Abstract body.\n\n" +
		"Keywords: k1, k2, k3, k4, k5, k6, k7, k8, k9, k10\n\n" +
		"Linguistic patterns: high_connectors, formal_phrases\n\n" +
		"High connector word usage detected.\n" +
		"Formal AI-style phrases detected.\n"
	if got != want {
		t.Errorf("Unexpected context:\n%q\nwant:\n%q", got, want)
	}
}

func TestDetectionContext_Minimal(t *testing.T) {
	doc := model.Document{Title: "T", Text: "Body"}

	got := DetectionContext(doc, model.FeatureSet{Empty: true, ConnectorDensity: 1})
	if got != "Title: T\n\nAbstract: Body\n\n" {
		t.Errorf("Unexpected context %q", got)
	}

	got = DetectionContext(doc, model.FeatureSet{HedgingDensity: 0.02})
	if !strings.HasSuffix(got, "High hedging language detected.\n") {
		t.Errorf("Expected hedging hint, got %q", got)
	}
}

func TestPlagiarismContext(t *testing.T) {
	long := strings.Repeat("é", 120)
	report := model.PlagiarismReport{
		Score: 0.5,
		Matches: []model.PlagiarismMatch{
			{Phrase: long},
			{Phrase: "second"},
			{Phrase: "third"},
			{Phrase: "fourth"},
		},
	}

	got := PlagiarismContext("Title", "Text", report)

	want := "Title: Title\nText: Text\n\n" +
		"Potential plagiarism matches found:\n" +
		"- " + strings.Repeat("é", 100) + "...\n" +
		"- second...\n" +
		"- third...\n" +
		"Plagiarism score: 0.500"
	if got != want {
		t.Errorf("Unexpected context:\n%q\nwant:\n%q", got, want)
	}
}

func TestPlagiarismContext_NoMatches(t *testing.T) {
	got := PlagiarismContext("T", "X", model.PlagiarismReport{})
	if got != "Title: T\nText: X\n\nPlagiarism score: 0.000" {
		t.Errorf("Unexpected context %q", got)
	}
}
