// Package ingest loads labelled abstracts into the document store.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/authentica/internal/extract"
	"github.com/ppiankov/authentica/internal/logger"
	"github.com/ppiankov/authentica/internal/model"
)

// MinAbstractLength is the shortest abstract, in characters, accepted from a corpus file
const MinAbstractLength = 30

// DefaultDomain tags ingested documents when no domain is configured
const DefaultDomain = "covid19_research"

// progressEvery controls how often ingestion progress is logged
const progressEvery = 1000

// DocumentWriter stores ingested documents
type DocumentWriter interface {
	UpsertDocument(ctx context.Context, doc model.Document) error
}

// Stats summarizes one ingestion
type Stats struct {
	Rows      int `json:"rows"`
	Loaded    int `json:"loaded"`
	Malformed int `json:"malformed"`
	Failed    int `json:"failed"`
}

// Ingester parses corpus files and upserts their documents
type Ingester struct {
	extractor *extract.FeatureExtractor
	writer    DocumentWriter
	domain    string
}

// NewIngester creates an ingester. Features are computed with extractor to tag patterns.
func NewIngester(extractor *extract.FeatureExtractor, writer DocumentWriter, domain string) *Ingester {
	if extractor == nil {
		extractor = extract.NewFeatureExtractor()
	}
	if domain == "" {
		domain = DefaultDomain
	}
	return &Ingester{
		extractor: extractor,
		writer:    writer,
		domain:    domain,
	}
}

// IngestFile ingests a CSV file. The file name becomes the document source.
func (in *Ingester) IngestFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return in.Ingest(ctx, f, source)
}

// Ingest reads CSV rows with abstract, title, and label columns from r.
// Rows whose abstract is empty, "nan", or shorter than MinAbstractLength
// are counted as malformed and skipped. Store failures are logged and counted.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader, source string) (Stats, error) {
	var stats Stats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return stats, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols["abstract"]; !ok {
		return stats, fmt.Errorf("missing abstract column: %w", model.ErrMalformedRecord)
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			logger.Debug("Row %d: %v", stats.Rows, err)
			stats.Malformed++
			continue
		}

		doc, err := in.parseRecord(record, cols, source)
		if err != nil {
			logger.Debug("Row %d: %v", stats.Rows, err)
			stats.Malformed++
			continue
		}

		if err := in.writer.UpsertDocument(ctx, doc); err != nil {
			logger.Warn("Storing %s failed: %v", doc.ID, err)
			stats.Failed++
			continue
		}

		stats.Loaded++
		if stats.Loaded%progressEvery == 0 {
			logger.Info("Loaded %d abstracts", stats.Loaded)
		}
	}

	return stats, nil
}

// parseRecord builds a document from one CSV row
func (in *Ingester) parseRecord(record []string, cols map[string]int, source string) (model.Document, error) {
	abstract := field(record, cols, "abstract")
	if abstract == "" || strings.EqualFold(abstract, "nan") || len([]rune(abstract)) < MinAbstractLength {
		return model.Document{}, fmt.Errorf("abstract missing or shorter than %d characters: %w",
			MinAbstractLength, model.ErrMalformedRecord)
	}

	title := field(record, cols, "title")
	if strings.EqualFold(title, "nan") {
		title = ""
	}

	doc := model.NewDocument(title, abstract, model.ParseLabel(field(record, cols, "label")))
	doc.Source = source
	doc.Domain = in.domain
	doc.Keywords = Keywords(title, abstract, MaxKeywords)
	doc.Patterns = Patterns(in.extractor.Extract(abstract))
	return doc, nil
}

// columnIndex maps lower-cased header names to their positions
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
