package enhance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Cache defines the interface for caching enhancement results.
type Cache interface {
	// Get retrieves a cached analysis.
	Get(key string) (*Analysis, bool)

	// Set stores an analysis.
	Set(key string, analysis *Analysis)
}

// GenerateCacheKey creates a cache key from model and conversation text.
func GenerateCacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model + ":" + text))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// MemoryCache is a bounded in-process cache. Identical conversations are
// re-submitted often enough (shared screenshots do the rounds) that
// skipping a second model call is worth a small map.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*Analysis
	maxEntries int
}

// NewMemoryCache creates a memory cache holding at most maxEntries results.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &MemoryCache{
		entries:    make(map[string]*Analysis),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(key string) (*Analysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	analysis, ok := c.entries[key]
	return analysis, ok
}

func (c *MemoryCache) Set(key string, analysis *Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict an arbitrary entry once full; results are cheap to recompute.
	if len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = analysis
}

// CachedAnalyzer wraps an Analyzer with result caching keyed by the
// conversation content.
type CachedAnalyzer struct {
	analyzer *Analyzer
	cache    Cache
}

// NewCachedAnalyzer creates a caching wrapper around an analyzer.
func NewCachedAnalyzer(analyzer *Analyzer, cache Cache) *CachedAnalyzer {
	return &CachedAnalyzer{
		analyzer: analyzer,
		cache:    cache,
	}
}

// Enhance returns a cached analysis when the same conversation was already
// scored with the same rule findings, calling through otherwise.
func (c *CachedAnalyzer) Enhance(ctx context.Context, req Request) (*Analysis, error) {
	key := c.requestKey(req)

	if analysis, ok := c.cache.Get(key); ok {
		return analysis, nil
	}

	analysis, err := c.analyzer.Enhance(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, analysis)
	return analysis, nil
}

// ExtractConversation passes through; screenshots are not cached.
func (c *CachedAnalyzer) ExtractConversation(ctx context.Context, imageBase64, mediaType string) (string, error) {
	return c.analyzer.ExtractConversation(ctx, imageBase64, mediaType)
}

func (c *CachedAnalyzer) requestKey(req Request) string {
	var b []byte
	for _, msg := range req.Messages {
		b = append(b, msg.Author...)
		b = append(b, ':')
		b = append(b, msg.Content...)
		b = append(b, '\n')
	}
	b = append(b, fmt.Sprintf("%d:%s", req.RuleScore, req.RuleVerdict)...)
	return GenerateCacheKey(c.analyzer.model, string(b))
}
