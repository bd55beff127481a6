package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv
const (
	EnvProvider     = "CODESCOUT_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvJinaAPIKey   = "JINA_API_KEY"
)

// Config holds explicit embedder configuration.
type Config struct {
	Provider  string
	APIKey    string
	Dimension int // Hashed provider only
	CacheSize int
}

// New creates an embedder from explicit configuration. Construction is
// the fallible initialization step: a misconfigured provider fails here,
// not on first use.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache)
	case ProviderHashed, "":
		return NewHashedProvider(cfg.Dimension, cache), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. CODESCOUT_EMBEDDING_PROVIDER (openai, jina, hashed)
//  2. Available API keys: OPENAI_API_KEY, JINA_API_KEY
//  3. The hashed fallback when no keys are found
func NewFromEnv() (Embedder, error) {
	cache := NewCache(10000)

	if provider := os.Getenv(EnvProvider); provider != "" {
		switch strings.ToLower(provider) {
		case ProviderOpenAI:
			return NewOpenAIProvider(os.Getenv(EnvOpenAIAPIKey), cache)
		case ProviderJina:
			return NewJinaProvider(os.Getenv(EnvJinaAPIKey), cache)
		case ProviderHashed:
			return NewHashedProvider(0, cache), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, provider)
		}
	}

	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		return NewOpenAIProvider(key, cache)
	}
	if key := os.Getenv(EnvJinaAPIKey); key != "" {
		return NewJinaProvider(key, cache)
	}

	return NewHashedProvider(0, cache), nil
}

// DetectProvider reports which provider NewFromEnv would choose.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	return ProviderHashed
}
