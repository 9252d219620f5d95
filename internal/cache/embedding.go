// Package cache provides the process-lifetime embedding memoization used
// by the dense retrieval path to avoid redundant embedding calls for a
// query string seen earlier in the same process.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joseon-annals/rag-service/internal/provider"
)

// EmbeddingCache memoizes query embedding vectors keyed by the exact
// query string. Unlike a request-scoped cache, entries never expire and
// the map is never evicted: the store is fixed for the process lifetime,
// so the total number of distinct query strings observed is bounded by
// the number of queries actually issued, not by corpus size.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewEmbeddingCache creates an empty EmbeddingCache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{entries: make(map[string][]float32)}
}

// Get returns the cached vector for the exact query string, if present.
func (c *EmbeddingCache) Get(query string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[query]
	return v, ok
}

// Set stores a vector under the exact query string.
func (c *EmbeddingCache) Set(query string, vec []float32) {
	c.mu.Lock()
	c.entries[query] = vec
	c.mu.Unlock()
}

// Len reports the number of distinct query strings cached so far.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EmbedMany embeds texts through the cache: cached hits are returned
// directly, misses are batched into a single underlying embedder.Embed
// call and stored before being returned, so repeated sub-queries across
// planner expansions or agent rounds never re-embed.
func (c *EmbeddingCache) EmbedMany(ctx context.Context, embedder provider.Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if v, ok := c.Get(t); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := embedder.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = vecs[j]
		c.Set(texts[idx], vecs[j])
	}
	slog.Debug("[EMBED-CACHE] batch", "requested", len(texts), "misses", len(missTexts), "cache_size", c.Len())
	return out, nil
}

// CachedEmbedder wraps a provider.Embedder with an EmbeddingCache,
// implementing provider.Embedder itself so callers throughout the
// retrieval pipeline can depend on the interface without knowing a
// cache sits in front of it.
type CachedEmbedder struct {
	Cache    *EmbeddingCache
	Embedder provider.Embedder
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.Cache.EmbedMany(ctx, c.Embedder, texts)
}
