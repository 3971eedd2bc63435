package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Platform identifiers used by the price provider, keyed by the
// human-readable chain name. Unrecognized chains fall back to Ethereum.
var platformByChainName = map[string]string{
	"Ethereum": "ethereum",
	"Arbitrum": "arbitrum-one",
	"Polygon":  "polygon-pos",
	"BSC":      "binance-smart-chain",
}

// PlatformForChain maps a chain display name to the provider's platform id.
func PlatformForChain(chainName string) string {
	if platform, ok := platformByChainName[chainName]; ok {
		return platform
	}
	return "ethereum"
}

// ContractInfo is the provider response for a token contract, with the
// optional fields modeled explicitly. Defaults (decimals 18, price 0)
// are applied by the accessors so callers never re-check for absence.
type ContractInfo struct {
	Symbol          string                    `json:"symbol"`
	DetailPlatforms map[string]detailPlatform `json:"detail_platforms"`
	MarketData      *marketData               `json:"market_data"`
}

type detailPlatform struct {
	DecimalPlace *uint8 `json:"decimal_place"`
}

type marketData struct {
	CurrentPrice map[string]float64 `json:"current_price"`
}

// Decimals returns the decimal precision for the platform, defaulting to 18.
func (c ContractInfo) Decimals(platform string) uint8 {
	detail, ok := c.DetailPlatforms[platform]
	if !ok || detail.DecimalPlace == nil || *detail.DecimalPlace == 0 {
		return 18
	}
	return *detail.DecimalPlace
}

// PriceUSD returns the USD spot price, defaulting to 0 when absent.
func (c ContractInfo) PriceUSD() float64 {
	if c.MarketData == nil {
		return 0
	}
	return c.MarketData.CurrentPrice["usd"]
}

// CoinGecko fetches token metadata from the CoinGecko contract endpoint.
type CoinGecko struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewCoinGecko builds a provider client with bounded retries.
func NewCoinGecko() *CoinGecko {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = 10 * time.Second
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 5 * time.Second
	client.RetryMax = 2
	return &CoinGecko{baseURL: defaultBaseURL, client: client}
}

// Contract fetches metadata for a token contract on the given platform.
func (g *CoinGecko) Contract(ctx context.Context, platform, tokenAddress string) (ContractInfo, error) {
	url := fmt.Sprintf("%s/coins/%s/contract/%s", g.baseURL, platform, tokenAddress)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ContractInfo{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return ContractInfo{}, fmt.Errorf("fetch contract info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ContractInfo{}, fmt.Errorf("provider status %s: %s", resp.Status, body)
	}

	var info ContractInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ContractInfo{}, fmt.Errorf("decode contract info: %w", err)
	}
	return info, nil
}
