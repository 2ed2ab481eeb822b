package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/authentica/internal/model"
)

type recordingWriter struct {
	docs []model.Document
	fail string
}

func (w *recordingWriter) UpsertDocument(ctx context.Context, doc model.Document) error {
	if w.fail != "" && strings.Contains(doc.Text, w.fail) {
		return errors.New("database is locked")
	}
	w.docs = append(w.docs, doc)
	return nil
}

const corpusCSV = `abstract,title,label
"Furthermore, it is important to note that vaccination significantly reduces mortality. In conclusion, vaccination works.",Vaccines,1
"We sampled 212 patients at two clinics in Ohio during March and logged temperatures.",Clinic survey,0
nan,Missing,1
Too short to keep.,Short,0
,Empty,1
`

func TestIngest(t *testing.T) {
	w := &recordingWriter{}
	stats, err := NewIngester(nil, w, "").Ingest(context.Background(), strings.NewReader(corpusCSV), "ai_ga")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	want := Stats{Rows: 5, Loaded: 2, Malformed: 3}
	if stats != want {
		t.Errorf("Expected %+v, got %+v", want, stats)
	}
	if len(w.docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(w.docs))
	}

	ai := w.docs[0]
	if ai.Title != "Vaccines" || ai.Label != model.LabelMachine {
		t.Errorf("Unexpected document %+v", ai)
	}
	if ai.ID != model.DocumentID(ai.Title, ai.Text) {
		t.Errorf("Expected content-derived id, got %s", ai.ID)
	}
	if ai.Source != "ai_ga" || ai.Domain != DefaultDomain {
		t.Errorf("Unexpected source/domain %q/%q", ai.Source, ai.Domain)
	}
	if len(ai.Keywords) == 0 || ai.Keywords[0] != "vaccination" {
		t.Errorf("Expected vaccination as top keyword, got %v", ai.Keywords)
	}
	if !reflect.DeepEqual(ai.Patterns, []string{PatternHighConnectors, PatternFormalPhrases}) {
		t.Errorf("Unexpected patterns %v", ai.Patterns)
	}

	if w.docs[1].Label != model.LabelHuman {
		t.Errorf("Expected human label, got %q", w.docs[1].Label)
	}
}

func TestIngest_MissingAbstractColumn(t *testing.T) {
	_, err := NewIngester(nil, &recordingWriter{}, "").Ingest(context.Background(), strings.NewReader("title,label\nx,1\n"), "s")
	if !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}
}

func TestIngest_HeaderVariants(t *testing.T) {
	csv := "\ufeffTitle, Abstract ,Label\nT,\"" + strings.Repeat("hospital capacity data ", 3) + "\",true\nshort row\n"
	w := &recordingWriter{}

	stats, err := NewIngester(nil, w, "covid").Ingest(context.Background(), strings.NewReader(csv), "s")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if stats.Loaded != 1 || stats.Malformed != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if w.docs[0].Title != "T" || w.docs[0].Label != model.LabelMachine || w.docs[0].Domain != "covid" {
		t.Errorf("Unexpected document %+v", w.docs[0])
	}
}

func TestIngest_StoreFailureCounted(t *testing.T) {
	w := &recordingWriter{fail: "Ohio"}

	stats, err := NewIngester(nil, w, "").Ingest(context.Background(), strings.NewReader(corpusCSV), "s")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if stats.Loaded != 1 || stats.Failed != 1 {
		t.Errorf("Expected 1 loaded and 1 failed, got %+v", stats)
	}
}

func TestIngest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIngester(nil, &recordingWriter{}, "").Ingest(ctx, strings.NewReader(corpusCSV), "s")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai-ga-dataset.csv")
	if err := os.WriteFile(path, []byte(corpusCSV), 0644); err != nil {
		t.Fatal(err)
	}
	w := &recordingWriter{}

	stats, err := NewIngester(nil, w, "").IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile failed: %v", err)
	}
	if stats.Loaded != 2 || w.docs[0].Source != "ai-ga-dataset" {
		t.Errorf("Unexpected result %+v, source %q", stats, w.docs[0].Source)
	}

	if _, err := NewIngester(nil, w, "").IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		desc  string
		title string
		text  string
		limit int
		want  []string
	}{
		{
			desc:  "frequency then first occurrence",
			title: "Vaccine uptake",
			text:  "Vaccine hesitancy shapes uptake. Hesitancy differs by region; vaccine access matters.",
			limit: 3,
			want:  []string{"vaccine", "uptake", "hesitancy"},
		},
		{
			desc:  "stop words, academic words, short and non-alphabetic tokens dropped",
			text:  "This study presents results about COVID-19 and the 2020 pandemic with masks.",
			limit: 15,
			want:  []string{"presents", "pandemic", "masks"},
		},
		{
			desc:  "empty input",
			limit: 15,
			want:  []string{},
		},
		{
			desc:  "zero limit",
			text:  "Ventilator shortages",
			limit: 0,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := Keywords(tt.title, tt.text, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		desc string
		f    model.FeatureSet
		want []string
	}{
		{"none", model.FeatureSet{ConnectorDensity: 0.025, HedgingDensity: 0.02, AIPhraseCount: 1, AvgSentenceLength: 28}, []string{}},
		{"all", model.FeatureSet{ConnectorDensity: 0.03, HedgingDensity: 0.021, AIPhraseCount: 2, AvgSentenceLength: 29},
			[]string{PatternHighConnectors, PatternHighHedging, PatternFormalPhrases, PatternLongSentences}},
		{"empty", model.FeatureSet{Empty: true, ConnectorDensity: 1}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := Patterns(tt.f); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Patterns() = %v, want %v", got, tt.want)
			}
		})
	}
}
