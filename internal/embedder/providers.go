package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider configuration
const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderHashed = "hashed"

	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultJinaModel   = "jina-embeddings-v3"

	OpenAIDimension = 1536
	JinaDimension   = 1024

	openAIEndpoint = "https://api.openai.com/v1/embeddings"
	jinaEndpoint   = "https://api.jina.ai/v1/embeddings"

	// MaxBatchSize bounds one provider call
	MaxBatchSize = 100
)

// apiRequest is the shared request body for both hosted APIs.
type apiRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// apiResponse is the shared response shape for both hosted APIs.
type apiResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// httpProvider implements Embedder against an OpenAI-compatible
// embeddings endpoint.
type httpProvider struct {
	name      string
	endpoint  string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
	cache     *Cache
}

// NewOpenAIProvider creates an embedder backed by the OpenAI API.
func NewOpenAIProvider(apiKey string, cache *Cache) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", ErrNoProviderEnabled)
	}
	return &httpProvider{
		name:      ProviderOpenAI,
		endpoint:  openAIEndpoint,
		apiKey:    apiKey,
		model:     DefaultOpenAIModel,
		dimension: OpenAIDimension,
		client:    &http.Client{Timeout: 30 * time.Second},
		cache:     cache,
	}, nil
}

// NewJinaProvider creates an embedder backed by the Jina AI API.
func NewJinaProvider(apiKey string, cache *Cache) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Jina API key not set", ErrNoProviderEnabled)
	}
	return &httpProvider{
		name:      ProviderJina,
		endpoint:  jinaEndpoint,
		apiKey:    apiKey,
		model:     DefaultJinaModel,
		dimension: JinaDimension,
		client:    &http.Client{Timeout: 30 * time.Second},
		cache:     cache,
	}, nil
}

func (p *httpProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if v, ok := p.cache.Get(hash); ok {
			return v, nil
		}
	}

	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *httpProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		return p.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, config.MaxRetries, err)
	}

	if err := checkWidths(vectors, p.dimension); err != nil {
		return nil, err
	}

	if p.cache != nil {
		for i, text := range texts {
			p.cache.Set(ComputeHash(text), vectors[i])
		}
	}
	return vectors, nil
}

// callAPI makes one embeddings request and decodes the response in input
// order.
func (p *httpProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(apiRequest{Input: texts, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, string(detail))
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.name, err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("%s returned %d embeddings for %d texts", p.name, len(decoded.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range decoded.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("%s returned out-of-range index %d", p.name, item.Index)
		}
		v := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			v[i] = float32(f)
		}
		vectors[item.Index] = v
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%s returned no embedding for index %d", p.name, i)
		}
	}
	return vectors, nil
}

func (p *httpProvider) Dimension() int {
	return p.dimension
}

func (p *httpProvider) Provider() string {
	return p.name
}

func (p *httpProvider) Model() string {
	return p.model
}

func (p *httpProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
