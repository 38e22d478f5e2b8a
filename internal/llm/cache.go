package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

// ReplyCache stores raw provider replies by prompt key.
type ReplyCache interface {
	GetReply(ctx context.Context, key string) (string, bool, error)
	PutReply(ctx context.Context, key, raw string) error
}

// PromptKey identifies a request by its prompt text.
func PromptKey(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.System))
	h.Write([]byte{0})
	h.Write([]byte(req.User))
	return hex.EncodeToString(h.Sum(nil))
}

// cacheEntry represents a cached reply.
type cacheEntry struct {
	expiry time.Time
	raw    string
}

// MemoryCache is a thread-safe in-process ReplyCache with a fixed TTL.
type MemoryCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// NewMemoryCache creates a new cache with the specified TTL. Call Close to
// stop the background cleanup.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &MemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup(time.Minute)

	return cache
}

// GetReply returns a reply if it exists and hasn't expired.
func (c *MemoryCache) GetReply(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return "", false, nil
	}

	return entry.raw, true, nil
}

// PutReply stores a reply.
func (c *MemoryCache) PutReply(_ context.Context, key, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		raw:    raw,
		expiry: time.Now().Add(c.ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}

func (c *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *MemoryCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// CachingClient serves repeated prompts from a ReplyCache. Cache failures
// are logged and never fail the request.
type CachingClient struct {
	client Client
	cache  ReplyCache
	logger *slog.Logger
}

// NewCachingClient decorates client with cache.
func NewCachingClient(client Client, cache ReplyCache, logger *slog.Logger) *CachingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingClient{client: client, cache: cache, logger: logger}
}

// Complete implements Client.
func (c *CachingClient) Complete(ctx context.Context, req Request) (string, error) {
	key := PromptKey(req)

	raw, ok, err := c.cache.GetReply(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("reply cache lookup failed", "error", err)
	case ok:
		c.logger.Debug("reply cache hit", "key", key[:12])
		return raw, nil
	}

	raw, err = c.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.cache.PutReply(ctx, key, raw); err != nil {
		c.logger.Warn("failed to cache reply", "error", err)
	}
	return raw, nil
}
