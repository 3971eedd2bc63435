package token

import (
	"context"
	"fmt"
	"testing"
	"time"

	"whaleScope/internal/model"
)

type fakeProvider struct {
	calls int
	info  ContractInfo
	err   error
}

func (f *fakeProvider) Contract(_ context.Context, _, _ string) (ContractInfo, error) {
	f.calls++
	if f.err != nil {
		return ContractInfo{}, f.err
	}
	return f.info, nil
}

func contractInfo(symbol string, decimals uint8, price float64) ContractInfo {
	return ContractInfo{
		Symbol: symbol,
		DetailPlatforms: map[string]detailPlatform{
			"ethereum": {DecimalPlace: &decimals},
		},
		MarketData: &marketData{CurrentPrice: map[string]float64{"usd": price}},
	}
}

func TestResolveCachesFreshEntries(t *testing.T) {
	provider := &fakeProvider{info: contractInfo("abc", 8, 1.5)}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	base := time.Unix(1700000000, 0)
	resolver.now = func() time.Time { return base }

	first := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	if first.Symbol != "ABC" {
		t.Fatalf("symbol not upper-cased: %s", first.Symbol)
	}
	if first.Decimals != 8 || first.PriceUSD != 1.5 {
		t.Fatalf("metadata mismatch: %+v", first)
	}

	// A lookup within the freshness window must not hit the provider.
	resolver.now = func() time.Time { return base.Add(4 * time.Minute) }
	second := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	if second != first {
		t.Fatalf("cached entry mismatch: %+v != %+v", second, first)
	}
	if provider.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", provider.calls)
	}
}

func TestResolveRefreshesStaleEntries(t *testing.T) {
	provider := &fakeProvider{info: contractInfo("abc", 18, 2)}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	base := time.Unix(1700000000, 0)
	resolver.now = func() time.Time { return base }
	resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")

	resolver.now = func() time.Time { return base.Add(5 * time.Minute) }
	resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")

	if provider.calls != 2 {
		t.Fatalf("expected stale entry refresh, got %d provider calls", provider.calls)
	}
}

func TestResolveFailureReturnsPlaceholder(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("provider down")}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	got := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	want := model.UnknownToken()
	if got != want {
		t.Fatalf("placeholder mismatch: %+v != %+v", got, want)
	}
}

func TestResolveFailureDoesNotPoisonCache(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("provider down")}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")

	// Recovery: the next cycle retries and caches the real entry.
	provider.err = nil
	provider.info = contractInfo("abc", 18, 3)
	got := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	if got.PriceUSD != 3 {
		t.Fatalf("expected retried lookup, got %+v", got)
	}
	if provider.calls != 2 {
		t.Fatalf("expected two provider calls, got %d", provider.calls)
	}
}

func TestResolveFailureKeepsFreshEntryIntact(t *testing.T) {
	provider := &fakeProvider{info: contractInfo("abc", 18, 2)}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	base := time.Unix(1700000000, 0)
	resolver.now = func() time.Time { return base }
	fresh := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")

	// Provider starts failing; the still-fresh entry keeps serving.
	provider.err = fmt.Errorf("provider down")
	resolver.now = func() time.Time { return base.Add(2 * time.Minute) }
	got := resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	if got != fresh {
		t.Fatalf("fresh entry disturbed: %+v != %+v", got, fresh)
	}
}

func TestResolveCacheIsPerChain(t *testing.T) {
	provider := &fakeProvider{info: contractInfo("abc", 18, 2)}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	resolver.Resolve(context.Background(), "eth", "0xabc", "Ethereum")
	resolver.Resolve(context.Background(), "bsc", "0xabc", "BSC")

	if provider.calls != 2 {
		t.Fatalf("expected per-chain cache keys, got %d provider calls", provider.calls)
	}
}

func TestResolveDefaults(t *testing.T) {
	// Provider response with no platform detail and no market data.
	provider := &fakeProvider{info: ContractInfo{Symbol: "xyz"}}
	resolver := NewResolver(provider, 5*time.Minute, nil)

	got := resolver.Resolve(context.Background(), "eth", "0xdef", "Ethereum")
	if got.Decimals != 18 {
		t.Fatalf("expected default decimals 18, got %d", got.Decimals)
	}
	if got.PriceUSD != 0 {
		t.Fatalf("expected default price 0, got %f", got.PriceUSD)
	}
}

func TestPlatformForChain(t *testing.T) {
	cases := map[string]string{
		"Ethereum": "ethereum",
		"Arbitrum": "arbitrum-one",
		"Polygon":  "polygon-pos",
		"BSC":      "binance-smart-chain",
		"Gnosis":   "ethereum",
	}
	for chain, want := range cases {
		if got := PlatformForChain(chain); got != want {
			t.Fatalf("platform mismatch for %s: %s != %s", chain, got, want)
		}
	}
}
