package web

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	previewCacheTTL      = time.Minute
	previewCacheMaxItems = 512
)

// previewCache holds encoded preview PNGs. Keys include the settings, so a
// settings change never serves a stale image; old entries just expire.
type previewCache struct {
	cache    *gocache.Cache
	maxItems int

	// setMu makes the size check and the insert in Set one step.
	setMu sync.Mutex
}

func newPreviewCache(ttl time.Duration, maxItems int) *previewCache {
	// No janitor goroutine: expired entries are dropped when the cache fills.
	return &previewCache{cache: gocache.New(ttl, 0), maxItems: maxItems}
}

func (c *previewCache) Get(key string) ([]byte, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	b, ok := value.([]byte)
	return b, ok
}

func (c *previewCache) Set(key string, png []byte) {
	c.setMu.Lock()
	defer c.setMu.Unlock()
	if c.cache.ItemCount() >= c.maxItems {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxItems {
			c.cache.Flush()
		}
	}
	c.cache.SetDefault(key, png)
}

func (c *previewCache) Len() int { return c.cache.ItemCount() }

func previewKey(settingsJSON []byte, text string, scale, padding int, lineColor, canvas any) string {
	h := sha256.New()
	h.Write(settingsJSON)
	fmt.Fprintf(h, "|%q|%d|%d|%v|%v", text, scale, padding, lineColor, canvas)
	return hex.EncodeToString(h.Sum(nil))
}
