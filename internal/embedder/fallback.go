package embedder

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashedDimension is the default width of the fallback embedding.
const HashedDimension = 256

// HashedModel identifies the fallback embedding scheme. Bump on any
// change to tokenization or hashing: embeddings are only comparable
// within one model version.
const HashedModel = "hashed-tf-v1"

// HashedProvider is the deterministic offline fallback: a dimensionality-
// reduced term-frequency embedding. Each token is hashed into one of
// Dimension buckets, bucket weights count token occurrences, and the
// vector is L2-normalized. Quality is far below a learned model, but the
// output is deterministic, always the declared width, and needs no
// network or API key.
type HashedProvider struct {
	dimension int
	cache     *Cache
}

// NewHashedProvider creates the fallback embedder. A non-positive dim
// selects HashedDimension.
func NewHashedProvider(dim int, cache *Cache) *HashedProvider {
	if dim <= 0 {
		dim = HashedDimension
	}
	return &HashedProvider{dimension: dim, cache: cache}
}

func (h *HashedProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if h.cache != nil {
		if v, ok := h.cache.Get(hash); ok {
			return v, nil
		}
	}

	vector := make([]float32, h.dimension)
	for _, token := range tokenize(text) {
		vector[bucket(token, h.dimension)]++
	}
	vector = NormalizeVector(vector)

	if h.cache != nil {
		h.cache.Set(hash, vector)
	}
	return vector, nil
}

func (h *HashedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := h.EmbedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (h *HashedProvider) Dimension() int {
	return h.dimension
}

func (h *HashedProvider) Provider() string {
	return ProviderHashed
}

func (h *HashedProvider) Model() string {
	return HashedModel
}

func (h *HashedProvider) Close() error {
	return nil
}

// tokenize lowercases the text, splits camelCase and snake_case
// identifiers, and drops anything that is not a letter or digit. Code
// identifiers like "AddNumbers" and a query like "add numbers" should
// land in the same buckets.
func tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsUpper(r):
			flush()
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// bucket maps a token to a vector position via FNV-1a.
func bucket(token string, dim int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(dim))
}
