package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/authentica/internal/model"
)

// MinTextLength is the shortest text, in characters, that yields features
const MinTextLength = 20

// posPrefixCap limits the characters analyzed by a part-of-speech tagger
const posPrefixCap = 1000

// Connectors are discourse connectors overused by language models
var Connectors = []string{
	"furthermore", "moreover", "additionally", "consequently", "therefore",
	"however", "nevertheless", "nonetheless", "in contrast", "similarly",
	"specifically", "particularly", "notably", "importantly", "essentially",
}

// HedgingWords soften claims
var HedgingWords = []string{
	"potentially", "possibly", "likely", "suggests", "indicates", "appears",
	"seems", "tends", "might", "could", "may", "presumably", "apparently",
}

// Intensifiers amplify claims
var Intensifiers = []string{
	"significantly", "substantially", "considerably", "notably", "remarkably",
	"particularly", "especially", "exceptionally", "extremely", "highly",
}

// AIPhrases are formal stock phrases matched as substrings of the lower-cased text
var AIPhrases = []string{
	"it is important to note", "it should be noted", "it is worth noting",
	"in conclusion", "in summary", "to summarize", "overall", "in general",
}

const punctuationChars = ".,;:!?()[]"

// FeatureExtractor computes lexical and syntactic statistics from text
type FeatureExtractor struct {
	minLength    int
	domainTerms  []string
	tagger       Tagger
	posPrefixCap int
}

// Option configures a FeatureExtractor
type Option func(*FeatureExtractor)

// WithTagger enables part-of-speech and entity statistics
func WithTagger(t Tagger) Option {
	return func(e *FeatureExtractor) {
		e.tagger = t
	}
}

// WithDomainTerms replaces the domain vocabulary
func WithDomainTerms(terms []string) Option {
	return func(e *FeatureExtractor) {
		e.domainTerms = normalizeTerms(terms)
	}
}

// WithMinLength overrides the minimum text length
func WithMinLength(n int) Option {
	return func(e *FeatureExtractor) {
		if n > 0 {
			e.minLength = n
		}
	}
}

// WithPOSPrefixCap overrides the number of characters handed to the tagger
func WithPOSPrefixCap(n int) Option {
	return func(e *FeatureExtractor) {
		if n > 0 {
			e.posPrefixCap = n
		}
	}
}

// NewFeatureExtractor creates a feature extractor with the default COVID-19 domain vocabulary
func NewFeatureExtractor(opts ...Option) *FeatureExtractor {
	e := &FeatureExtractor{
		minLength:    MinTextLength,
		domainTerms:  normalizeTerms(model.CovidTerms),
		posPrefixCap: posPrefixCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFeatureExtractorFromConfig builds an extractor from the features config section
func NewFeatureExtractorFromConfig(cfg model.FeaturesConfig) *FeatureExtractor {
	opts := []Option{
		WithMinLength(cfg.MinTextLength),
		WithPOSPrefixCap(cfg.POSPrefixCap),
	}
	if len(cfg.DomainTerms) > 0 {
		opts = append(opts, WithDomainTerms(cfg.DomainTerms))
	}
	if cfg.POSTagging {
		opts = append(opts, WithTagger(NewRuleTagger()))
	}
	return NewFeatureExtractor(opts...)
}

// Extract computes the feature set of text.
// Text shorter than the minimum length, or without any alphabetic word, yields an empty feature set.
func (e *FeatureExtractor) Extract(text string) model.FeatureSet {
	features, _ := e.ExtractChecked(text)
	return features
}

// ExtractChecked is Extract that also reports insufficient input as an error
func (e *FeatureExtractor) ExtractChecked(text string) (model.FeatureSet, error) {
	length := len([]rune(text))
	if length < e.minLength {
		return model.FeatureSet{Empty: true}, fmt.Errorf("text has %d characters, need %d: %w",
			length, e.minLength, model.ErrInsufficientInput)
	}

	tokens := tokenizeWords(text)
	words := alphabeticWords(tokens)
	if len(words) == 0 {
		return model.FeatureSet{Empty: true}, fmt.Errorf("text has no alphabetic words: %w", model.ErrInsufficientInput)
	}

	sentences := splitSentences(text)
	lower := strings.ToLower(text)

	f := model.FeatureSet{
		WordCount:     len(words),
		SentenceCount: len(sentences),
	}

	f.AvgSentenceLength = safeDiv(float64(len(words)), float64(len(sentences)))

	totalLen := 0
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		totalLen += len([]rune(w))
		unique[w] = struct{}{}
	}
	f.AvgWordLength = safeDiv(float64(totalLen), float64(len(words)))
	f.UniqueWordRatio = ratio(len(unique), len(words))

	punct := 0
	for _, r := range text {
		if strings.ContainsRune(punctuationChars, r) {
			punct++
		}
	}
	f.PunctuationDensity = ratio(punct, length)

	f.ConnectorDensity = ratio(countVocabulary(words, Connectors), len(words))
	f.HedgingDensity = ratio(countVocabulary(words, HedgingWords), len(words))
	f.IntensifierDensity = ratio(countVocabulary(words, Intensifiers), len(words))

	for _, phrase := range AIPhrases {
		if strings.Contains(lower, phrase) {
			f.AIPhraseCount++
		}
	}

	r := computeReadability(tokens, len(sentences))
	f.FleschReadingEase = r.FleschReadingEase
	f.FleschKincaidGrade = r.FleschKincaidGrade
	f.AutomatedReadability = r.AutomatedReadability

	for _, term := range e.domainTerms {
		if strings.Contains(lower, term) {
			f.DomainTerms++
		}
	}

	if e.tagger != nil {
		e.applyTagging(&f, text)
	}

	return f, nil
}

// applyTagging fills part-of-speech ratios from the tagged prefix of text
func (e *FeatureExtractor) applyTagging(f *model.FeatureSet, text string) {
	prefix := []rune(text)
	if len(prefix) > e.posPrefixCap {
		prefix = prefix[:e.posPrefixCap]
	}

	tagging := e.tagger.Tag(string(prefix))
	total := len(tagging.Tokens)

	counts := make(map[POS]int)
	for _, tok := range tagging.Tokens {
		counts[tok.POS]++
	}

	f.NounRatio = model.Some(ratio(counts[POSNoun], total))
	f.VerbRatio = model.Some(ratio(counts[POSVerb], total))
	f.AdjRatio = model.Some(ratio(counts[POSAdj], total))
	f.AdvRatio = model.Some(ratio(counts[POSAdv], total))
	f.EntityCount = model.Some(float64(tagging.Entities))
	f.EntityDensity = model.Some(ratio(tagging.Entities, total))
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool)
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ratio divides and clamps into [0,1]; a zero denominator yields 0
func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	r := float64(num) / float64(den)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
