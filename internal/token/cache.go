package token

import (
	"sync"
	"time"

	"whaleScope/internal/model"
)

type cacheKey struct {
	chainKey     string
	tokenAddress string
}

// infoCache caches resolved token metadata by (chain, address).
//
// Keying by chain as well avoids cross-chain collisions for tokens that
// reuse the same contract address on different networks.
type infoCache struct {
	mu   sync.RWMutex
	data map[cacheKey]model.TokenInfo
}

func newInfoCache() *infoCache {
	return &infoCache{data: make(map[cacheKey]model.TokenInfo)}
}

// Fresh returns the cached entry if it is younger than ttl at now.
func (c *infoCache) Fresh(key cacheKey, now time.Time, ttl time.Duration) (model.TokenInfo, bool) {
	c.mu.RLock()
	info, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || now.Sub(info.ResolvedAt) >= ttl {
		return model.TokenInfo{}, false
	}
	return info, true
}

func (c *infoCache) Set(key cacheKey, info model.TokenInfo) {
	c.mu.Lock()
	c.data[key] = info
	c.mu.Unlock()
}
