// Package embedder turns text into fixed-dimension float32 vectors.
//
// The Embedder interface is the engine's only view of an embedding model.
// Two HTTP providers (OpenAI, Jina) call hosted APIs with retry and an
// LRU content cache; the hashed provider is a deterministic, offline
// term-frequency fallback that trades embedding quality for availability
// while always producing vectors of its declared dimension.
//
// Providers are deterministic for a fixed model version. The package
// imposes no timeout beyond the HTTP client's; cancellation is the
// caller's responsibility via context.
package embedder
