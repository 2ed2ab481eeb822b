package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/authentica/internal/model"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	s, err := Open(context.Background(), model.StoreConfig{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, err)
	require.NotNil(t, s)

	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func testDocument(title, text string, label model.Label) model.Document {
	doc := model.NewDocument(title, text, label)
	doc.Source = "covid_abstracts.csv"
	doc.Keywords = []string{"vaccine", "cohort"}
	return doc
}

// ==================== Open and Migration Tests ====================

func TestOpen_CreatesDirectoryAndSchema(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(context.Background(), model.StoreConfig{Path: filepath.Join(dir, "a.db")})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)

	var version int
	require.NoError(t, s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(ctx, model.StoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.UpsertDocument(ctx, testDocument("T", "Persisted text body for reopen.", model.LabelHuman)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, model.StoreConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_RetriesWithBackoff(t *testing.T) {
	var sleeps []time.Duration
	orig := openSleepFunc
	openSleepFunc = func(d time.Duration) { sleeps = append(sleeps, d) }
	t.Cleanup(func() { openSleepFunc = orig })

	// A directory cannot be opened as a database file
	dir := t.TempDir()
	_, err := Open(context.Background(), model.StoreConfig{Path: dir, MaxRetries: 3})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

// ==================== Document Tests ====================

func TestUpsertDocument_NeverOverwritesContent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := testDocument("Original title", "Original abstract text about vaccines.", model.LabelHuman)
	require.NoError(t, s.UpsertDocument(ctx, doc))

	changed := doc
	changed.Title = "Rewritten title"
	changed.Text = "Rewritten abstract text."
	changed.Label = model.LabelUnknown
	changed.Keywords = []string{"updated"}
	require.NoError(t, s.UpsertDocument(ctx, changed))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original title", got.Title)
	assert.Equal(t, "Original abstract text about vaccines.", got.Text)
	assert.Equal(t, model.LabelHuman, got.Label, "empty label must not erase a known one")
	assert.Equal(t, []string{"updated"}, got.Keywords)
}

func TestUpsertDocument_DerivesID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := model.Document{Title: "No id", Text: "Document inserted without an explicit id."}
	require.NoError(t, s.UpsertDocument(ctx, doc))

	got, err := s.GetDocument(ctx, model.DocumentID(doc.Title, doc.Text))
	require.NoError(t, err)
	assert.Equal(t, "No id", got.Title)
	assert.Empty(t, got.Keywords)
}

func TestGetDocument_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetDocument(context.Background(), "doc_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestListDocuments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, s.UpsertDocument(ctx, testDocument(title, "Body text for "+title, model.LabelUnknown)))
	}

	all, err := s.ListDocuments(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := s.ListDocuments(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSaveDerived(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := testDocument("Scored", "A document that will receive a snapshot.", model.LabelMachine)
	require.NoError(t, s.UpsertDocument(ctx, doc))

	snap := model.Snapshot{
		Features:          model.FeatureSet{WordCount: 7, ConnectorDensity: 0.03},
		AIScore:           0.75,
		Strategy:          "full",
		PlagiarismScore:   0.5,
		PlagiarismMatches: 1,
		PlagiarismChecked: true,
		RunID:             "run-1",
		UpdatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveDerived(ctx, doc.ID, snap))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Derived)
	assert.Equal(t, 0.75, got.Derived.AIScore)
	assert.Equal(t, 7, got.Derived.Features.WordCount)
	assert.False(t, got.Derived.Features.NounRatio.Present)
	assert.Equal(t, "run-1", got.Derived.RunID)

	err = s.SaveDerived(ctx, "doc_missing", snap)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestPendingEnrichment(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	done := testDocument("done", "Already embedded document body.", model.LabelHuman)
	pending := testDocument("pending", "Not yet embedded document body.", model.LabelHuman)
	require.NoError(t, s.UpsertDocument(ctx, done))
	require.NoError(t, s.UpsertDocument(ctx, pending))
	require.NoError(t, s.SaveEmbedding(ctx, done.ID, "primary", KindContent, "m", []float32{1, 0}))

	docs, err := s.PendingEnrichment(ctx, "primary", 500)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, pending.ID, docs[0].ID)

	// An embedding in another index does not count
	docs, err = s.PendingEnrichment(ctx, "local", 500)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	has, err := s.HasEmbedding(ctx, done.ID, "primary", KindContent)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasEmbedding(ctx, done.ID, "local", KindContent)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPendingEnrichment_OtherIndexOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := testDocument("local-only", "Document embedded only by the local provider.", model.LabelMachine)
	require.NoError(t, s.UpsertDocument(ctx, doc))
	require.NoError(t, s.SaveEmbedding(ctx, doc.ID, "local", KindContent, "hashing", []float32{0, 1}))

	has, err := s.HasEmbedding(ctx, doc.ID, "primary", KindContent)
	require.NoError(t, err)
	assert.False(t, has)

	docs, err := s.PendingEnrichment(ctx, "primary", 500)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	docs, err = s.PendingEnrichment(ctx, "local", 500)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSaveEmbedding_Replaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := testDocument("vec", "Document with a replaced vector.", model.LabelUnknown)
	require.NoError(t, s.UpsertDocument(ctx, doc))
	require.NoError(t, s.SaveEmbedding(ctx, doc.ID, "primary", KindContent, "m", []float32{1, 0, 0}))
	require.NoError(t, s.SaveEmbedding(ctx, doc.ID, "primary", KindContent, "m", []float32{0, 1, 0}))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, s.SaveEmbedding(ctx, doc.ID, "primary", KindContent, "m", nil))
}

// ==================== Match Tests ====================

func TestSaveMatches(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := testDocument("a", "First document sharing a source.", model.LabelUnknown)
	b := testDocument("b", "Second document sharing a source.", model.LabelUnknown)
	require.NoError(t, s.UpsertDocument(ctx, a))
	require.NoError(t, s.UpsertDocument(ctx, b))

	match := model.PlagiarismMatch{
		ID:         model.MatchID("https://arxiv.org/abs/1"),
		Phrase:     "shared phrase one",
		URL:        "https://arxiv.org/abs/1",
		Similarity: 0.9,
	}
	require.NoError(t, s.SaveMatches(ctx, a.ID, []model.PlagiarismMatch{match}))
	require.NoError(t, s.SaveMatches(ctx, a.ID, []model.PlagiarismMatch{match}))
	require.NoError(t, s.SaveMatches(ctx, b.ID, []model.PlagiarismMatch{match}))

	var records, edges int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&records))
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM document_matches").Scan(&edges))
	assert.Equal(t, 1, records)
	assert.Equal(t, 2, edges)

	got, err := s.Matches(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "shared phrase one", got[0].Phrase)
	assert.Equal(t, 0.9, got[0].Similarity)

	require.NoError(t, s.SetMatchAuthority(ctx, match.ID, model.TierPrimary))
	got, err = s.Matches(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TierPrimary, got[0].Authority)

	assert.True(t, errors.Is(s.SetMatchAuthority(ctx, "match_none", model.TierPrimary), model.ErrNotFound))
}

// ==================== Stats Tests ====================

func TestDetectionStatsAndFeatureComparison(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seed := []struct {
		title string
		label model.Label
		score float64
		conn  float64
	}{
		{"h1", model.LabelHuman, 0.1, 0.01},
		{"h2", model.LabelHuman, 0.3, 0.03},
		{"m1", model.LabelMachine, 0.8, 0.05},
	}
	for _, sd := range seed {
		doc := testDocument(sd.title, "Stats body text for "+sd.title, sd.label)
		require.NoError(t, s.UpsertDocument(ctx, doc))
		require.NoError(t, s.SaveDerived(ctx, doc.ID, model.Snapshot{
			Features: model.FeatureSet{WordCount: 5, AvgSentenceLength: 10, ConnectorDensity: sd.conn, UniqueWordRatio: 0.9},
			AIScore:  sd.score,
		}))
	}
	// Unlabelled and unscored documents are excluded
	require.NoError(t, s.UpsertDocument(ctx, testDocument("u", "Unlabelled body text.", model.LabelUnknown)))
	require.NoError(t, s.UpsertDocument(ctx, testDocument("x", "Unscored body text.", model.LabelHuman)))

	stats, err := s.DetectionStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byLabel := map[model.Label]model.LabelStats{}
	for _, st := range stats {
		byLabel[st.Label] = st
	}
	human := byLabel[model.LabelHuman]
	assert.Equal(t, 2, human.Count)
	assert.InDelta(t, 0.2, human.AvgAIScore, 1e-9)
	assert.Equal(t, 0.1, human.MinAIScore)
	assert.Equal(t, 0.3, human.MaxAIScore)
	assert.Equal(t, 1, byLabel[model.LabelMachine].Count)

	comparison, err := s.FeatureComparison(ctx)
	require.NoError(t, err)
	require.Len(t, comparison, 2)
	for _, fa := range comparison {
		if fa.Label == model.LabelHuman {
			assert.InDelta(t, 0.02, fa.ConnectorDensity, 1e-9)
			assert.Equal(t, 10.0, fa.AvgSentenceLength)
		}
	}
}

// ==================== Helper Tests ====================

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
