package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	Features     FeaturesConfig     `yaml:"features" mapstructure:"features"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Enrich       EnrichConfig       `yaml:"enrich" mapstructure:"enrich"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	Verify       VerifyConfig       `yaml:"verify" mapstructure:"verify"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// FeaturesConfig controls feature extraction
type FeaturesConfig struct {
	MinTextLength int      `yaml:"min_text_length" mapstructure:"min_text_length"`
	DomainTerms   []string `yaml:"domain_terms" mapstructure:"domain_terms"`
	POSTagging    bool     `yaml:"pos_tagging" mapstructure:"pos_tagging"`
	POSPrefixCap  int      `yaml:"pos_prefix_cap" mapstructure:"pos_prefix_cap"` // Characters analyzed by the tagger
}

// ScoringConfig selects scoring strategies by name ("full" or "reduced")
type ScoringConfig struct {
	AdHocStrategy  string `yaml:"adhoc_strategy" mapstructure:"adhoc_strategy"`
	EnrichStrategy string `yaml:"enrich_strategy" mapstructure:"enrich_strategy"`
}

// SearchConfig configures the restricted web-search provider
type SearchConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"` // "tavily" or "" (disabled)
	BaseURL         string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey          string        `yaml:"-" mapstructure:"api_key"`
	IncludeDomains  []string      `yaml:"include_domains" mapstructure:"include_domains"`
	MaxResults      int           `yaml:"max_results" mapstructure:"max_results"`
	Depth           string        `yaml:"depth" mapstructure:"depth"`
	Throttle        time.Duration `yaml:"throttle" mapstructure:"throttle"` // Pause after every search
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxPhrases      int           `yaml:"max_phrases" mapstructure:"max_phrases"`
	MinPhraseLength int           `yaml:"min_phrase_length" mapstructure:"min_phrase_length"`
	MatchThreshold  float64       `yaml:"match_threshold" mapstructure:"match_threshold"`
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // "openai", "hashing", or "" (disabled)
	Model      string        `yaml:"model" mapstructure:"model"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey     string        `yaml:"-" mapstructure:"api_key"`
	Dimensions int           `yaml:"dimensions" mapstructure:"dimensions"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RetrievalConfig controls nearest-neighbor lookups
type RetrievalConfig struct {
	Limit    int     `yaml:"limit" mapstructure:"limit"`
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
}

// StoreConfig configures the document store
type StoreConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// EnrichConfig controls bulk corpus enrichment
type EnrichConfig struct {
	Limit           int           `yaml:"limit" mapstructure:"limit"`
	CheckpointEvery int           `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
	Pause           time.Duration `yaml:"pause" mapstructure:"pause"`
	Plagiarism      bool          `yaml:"plagiarism" mapstructure:"plagiarism"`
	Force           bool          `yaml:"-" mapstructure:"force"` // Reprocess already enriched documents
}

// CacheConfig configures caching of provider responses
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// HTTPConfig holds shared HTTP client settings
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls the shared token bucket used by parallel batches
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AuthorityConfig classifies matched sources into authority tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern assigns a tier to URLs whose path matches a regular expression
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// VerifyConfig controls optional verification of matched sources
type VerifyConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Workers int           `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls output formatting
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// ScholarlyDomains is the default search whitelist
var ScholarlyDomains = []string{
	"pubmed.ncbi.nlm.nih.gov",
	"arxiv.org",
	"biorxiv.org",
	"medrxiv.org",
}

// CovidTerms is the default domain vocabulary
var CovidTerms = []string{
	"covid", "coronavirus", "sars-cov-2", "pandemic", "lockdown",
	"vaccine", "vaccination", "quarantine", "social distancing", "mask",
	"ventilator", "icu", "hospital", "mortality", "symptom",
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Features: FeaturesConfig{
			MinTextLength: 20,
			DomainTerms:   append([]string(nil), CovidTerms...),
			POSTagging:    false,
			POSPrefixCap:  1000,
		},
		Scoring: ScoringConfig{
			AdHocStrategy:  "reduced",
			EnrichStrategy: "full",
		},
		Search: SearchConfig{
			Provider:        "tavily",
			BaseURL:         "https://api.tavily.com",
			IncludeDomains:  append([]string(nil), ScholarlyDomains...),
			MaxResults:      5,
			Depth:           "basic",
			Throttle:        500 * time.Millisecond,
			Timeout:         30 * time.Second,
			MaxPhrases:      3,
			MinPhraseLength: 15,
			MatchThreshold:  0.8,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			Timeout:    60 * time.Second,
		},
		Retrieval: RetrievalConfig{
			Limit:    5,
			MinScore: 0.8,
		},
		Store: StoreConfig{
			Path:       "authentica.db",
			MaxRetries: 3,
		},
		Enrich: EnrichConfig{
			Limit:           500,
			CheckpointEvery: 50,
			Pause:           time.Second,
			Plagiarism:      true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".authentica-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			UserAgent: "Authentica/0.1 (+https://github.com/ppiankov/authentica)",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         1,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: append([]string(nil), ScholarlyDomains...),
			SecondaryDomains: []string{
				"nature.com", "sciencedirect.com", "springer.com", "wiley.com",
				"thelancet.com", "nejm.org", "bmj.com", "plos.org", "wikipedia.org",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/doi/10\.\d{4,}/`, Tier: "secondary"},
				{Pattern: `^/(abs|pdf)/\d{4}\.\d{4,5}`, Tier: "primary"},
			},
		},
		Verify: VerifyConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
			Workers: 4,
		},
	}
}
