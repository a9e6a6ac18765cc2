// Package config loads the engine configuration from YAML with
// PATTERNMATCH_* environment overrides layered on top.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete patternmatch configuration.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus" json:"corpus"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// CorpusConfig configures corpus loading.
type CorpusConfig struct {
	// Path is the corpus JSON file (patterns plus embeddings).
	Path string `yaml:"path" json:"path"`

	// Watch reloads the corpus when the file changes.
	Watch bool `yaml:"watch" json:"watch"`

	// WatchDebounce coalesces bursts of file events (e.g. "500ms").
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
}

// SearchConfig configures retrieval and fusion.
type SearchConfig struct {
	// LexicalWeight and SemanticWeight are the fusion coefficients.
	// They must sum to 1.0.
	LexicalWeight  float64 `yaml:"lexical_weight" json:"lexical_weight"`
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// BM25K1 and BM25B are the lexical scoring parameters.
	BM25K1 float64 `yaml:"bm25_k1" json:"bm25_k1"`
	BM25B  float64 `yaml:"bm25_b" json:"bm25_b"`

	// BM25Backend selects the lexical index: "memory" (default) or
	// "bleve".
	BM25Backend string `yaml:"bm25_backend" json:"bm25_backend"`

	// ConfidenceHigh and ConfidenceMedium are the tier thresholds.
	ConfidenceHigh   float64 `yaml:"confidence_high" json:"confidence_high"`
	ConfidenceMedium float64 `yaml:"confidence_medium" json:"confidence_medium"`

	// TopK is the default result count; MaxTopK caps caller requests.
	TopK    int `yaml:"top_k" json:"top_k"`
	MaxTopK int `yaml:"max_top_k" json:"max_top_k"`

	// OverallTimeout is the per-query deadline (e.g. "5s").
	OverallTimeout string `yaml:"overall_timeout" json:"overall_timeout"`

	// MultiQuery enables the experimental paraphrase strategy.
	MultiQuery bool `yaml:"multi_query" json:"multi_query"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "openai" or "static".
	Provider string `yaml:"provider" json:"provider"`

	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`

	// APIKey and BaseURL configure the remote provider. BaseURL makes
	// any OpenAI-compatible endpoint usable.
	APIKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`

	// CacheSize is the query embedding LRU capacity.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// EmbedTimeout bounds one embedding call (e.g. "300ms").
	EmbedTimeout string `yaml:"embed_timeout" json:"embed_timeout"`

	// RetryAttempts and RetryBaseDelay shape the backoff policy.
	RetryAttempts  int    `yaml:"retry_attempts" json:"retry_attempts"`
	RetryBaseDelay string `yaml:"retry_base_delay" json:"retry_base_delay"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path:          "patterns.json",
			Watch:         false,
			WatchDebounce: "500ms",
		},
		Search: SearchConfig{
			LexicalWeight:    0.3,
			SemanticWeight:   0.7,
			BM25K1:           1.5,
			BM25B:            0.75,
			BM25Backend:      "memory",
			ConfidenceHigh:   0.75,
			ConfidenceMedium: 0.50,
			TopK:             5,
			MaxTopK:          50,
			OverallTimeout:   "5s",
			MultiQuery:       false,
		},
		Embeddings: EmbeddingsConfig{
			Provider:       "static",
			Model:          "text-embedding-3-small",
			Dimensions:     1536,
			CacheSize:      1000,
			EmbedTimeout:   "300ms",
			RetryAttempts:  3,
			RetryBaseDelay: "2s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration with increasing precedence: defaults, the
// YAML file at path (optional), then PATTERNMATCH_* environment
// variables. The final configuration is validated.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PATTERNMATCH_CORPUS"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("PATTERNMATCH_LEXICAL_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w >= 0 && w <= 1 {
			c.Search.LexicalWeight = w
		}
	}
	if v := os.Getenv("PATTERNMATCH_SEMANTIC_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w >= 0 && w <= 1 {
			c.Search.SemanticWeight = w
		}
	}
	if v := os.Getenv("PATTERNMATCH_BM25_BACKEND"); v != "" {
		c.Search.BM25Backend = v
	}
	if v := os.Getenv("PATTERNMATCH_EMBEDDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("PATTERNMATCH_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Embeddings.APIKey == "" {
		c.Embeddings.APIKey = v
	}
	if v := os.Getenv("PATTERNMATCH_OPENAI_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("PATTERNMATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Search.LexicalWeight < 0 || c.Search.LexicalWeight > 1 {
		return fmt.Errorf("lexical_weight must be between 0 and 1, got %f", c.Search.LexicalWeight)
	}
	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight must be between 0 and 1, got %f", c.Search.SemanticWeight)
	}
	if sum := c.Search.LexicalWeight + c.Search.SemanticWeight; math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("lexical_weight + semantic_weight must equal 1.0, got %.2f", sum)
	}
	if c.Search.BM25K1 <= 0 {
		return fmt.Errorf("bm25_k1 must be positive, got %f", c.Search.BM25K1)
	}
	if c.Search.BM25B < 0 || c.Search.BM25B > 1 {
		return fmt.Errorf("bm25_b must be between 0 and 1, got %f", c.Search.BM25B)
	}
	if c.Search.ConfidenceHigh < c.Search.ConfidenceMedium {
		return fmt.Errorf("confidence_high (%.2f) must not be below confidence_medium (%.2f)",
			c.Search.ConfidenceHigh, c.Search.ConfidenceMedium)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Search.TopK)
	}

	validBackends := map[string]bool{"memory": true, "bleve": true, "": true}
	if !validBackends[strings.ToLower(c.Search.BM25Backend)] {
		return fmt.Errorf("bm25_backend must be 'memory' or 'bleve', got %s", c.Search.BM25Backend)
	}

	validProviders := map[string]bool{"openai": true, "static": true, "": true}
	if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
		return fmt.Errorf("embeddings.provider must be 'openai' or 'static', got %s", c.Embeddings.Provider)
	}
	if strings.ToLower(c.Embeddings.Provider) == "openai" && c.Embeddings.APIKey == "" {
		return fmt.Errorf("embeddings.provider 'openai' requires an API key (set OPENAI_API_KEY)")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	for _, d := range []struct {
		name, value string
	}{
		{"corpus.watch_debounce", c.Corpus.WatchDebounce},
		{"search.overall_timeout", c.Search.OverallTimeout},
		{"embeddings.embed_timeout", c.Embeddings.EmbedTimeout},
		{"embeddings.retry_base_delay", c.Embeddings.RetryBaseDelay},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s: invalid duration %q", d.name, d.value)
		}
	}

	return nil
}

// Duration parses a duration field, falling back when empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
