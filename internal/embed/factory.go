package embed

import (
	"os"
	"strings"
)

// ProviderType selects an embedding provider.
type ProviderType string

const (
	// ProviderOpenAI uses the OpenAI embeddings API (default when an
	// API key is configured).
	ProviderOpenAI ProviderType = "openai"

	// ProviderStatic uses hash-based embeddings. No network, no key,
	// deterministic; reduced semantic quality.
	ProviderStatic ProviderType = "static"
)

// FactoryConfig carries the settings the factory needs to construct a
// provider.
type FactoryConfig struct {
	Provider  ProviderType
	OpenAI    OpenAIConfig
	CacheSize int
}

// NewEmbedder builds the configured embedder, wrapped with the LRU
// cache unless PATTERNMATCH_EMBED_CACHE disables it. The
// PATTERNMATCH_EMBEDDER environment variable overrides the configured
// provider.
func NewEmbedder(cfg FactoryConfig) (Embedder, error) {
	provider := cfg.Provider
	if env := os.Getenv("PATTERNMATCH_EMBEDDER"); env != "" {
		provider = ParseProvider(env)
	}

	var embedder Embedder
	switch provider {
	case ProviderOpenAI:
		inner, err := NewOpenAIEmbedder(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		embedder = inner
	default:
		embedder = NewStaticEmbedder()
	}

	if !isCacheDisabled() {
		embedder = NewCachedEmbedder(embedder, cfg.CacheSize)
	}
	return embedder, nil
}

func isCacheDisabled() bool {
	v := strings.ToLower(os.Getenv("PATTERNMATCH_EMBED_CACHE"))
	return v == "false" || v == "0" || v == "off" || v == "disabled"
}

// ParseProvider converts a string to a ProviderType. Unknown values
// fall back to static, which always works.
func ParseProvider(s string) ProviderType {
	switch strings.ToLower(s) {
	case "openai":
		return ProviderOpenAI
	case "static":
		return ProviderStatic
	default:
		return ProviderStatic
	}
}

// String returns the provider name.
func (p ProviderType) String() string { return string(p) }
