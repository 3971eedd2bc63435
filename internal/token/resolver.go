package token

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"whaleScope/internal/model"
)

// DefaultCacheTTL is how long a resolved entry counts as fresh.
const DefaultCacheTTL = 5 * time.Minute

// Provider fetches token metadata for a contract on a platform.
type Provider interface {
	Contract(ctx context.Context, platform, tokenAddress string) (ContractInfo, error)
}

// Resolver resolves token contracts to symbol, decimals, and USD price,
// backed by a freshness-bounded cache.
type Resolver struct {
	provider Provider
	cache    *infoCache
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewResolver builds a resolver around the given provider.
func NewResolver(provider Provider, ttl time.Duration, logger *zap.Logger) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		provider: provider,
		cache:    newInfoCache(),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Resolve returns metadata for the token, serving fresh cache entries
// without a provider call. It never fails: any lookup error collapses
// into the UNKNOWN placeholder, which is not cached so the next cycle
// retries the lookup.
func (r *Resolver) Resolve(ctx context.Context, chainKey, tokenAddress, chainName string) model.TokenInfo {
	key := cacheKey{chainKey: chainKey, tokenAddress: tokenAddress}
	now := r.now()

	if info, ok := r.cache.Fresh(key, now, r.ttl); ok {
		return info
	}

	platform := PlatformForChain(chainName)
	contract, err := r.provider.Contract(ctx, platform, tokenAddress)
	if err != nil {
		r.logger.Warn("token metadata lookup failed",
			zap.String("token", tokenAddress),
			zap.String("platform", platform),
			zap.Error(err),
		)
		return model.UnknownToken()
	}

	info := model.TokenInfo{
		Symbol:     strings.ToUpper(contract.Symbol),
		Decimals:   contract.Decimals(platform),
		PriceUSD:   contract.PriceUSD(),
		ResolvedAt: now,
	}
	r.cache.Set(key, info)
	return info
}
