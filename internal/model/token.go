package model

import "time"

// UnknownSymbol is reported when token metadata could not be resolved.
const UnknownSymbol = "UNKNOWN"

// TokenInfo is resolved token metadata plus its resolution time.
//
// PriceUSD of zero means the price is unknown; downstream filtering
// treats such transfers as carrying no economic signal.
type TokenInfo struct {
	Symbol     string    `json:"symbol"`
	Decimals   uint8     `json:"decimals"`
	PriceUSD   float64   `json:"price_usd"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// UnknownToken is the placeholder returned when metadata lookup fails.
// It is never written to the resolver cache, so the next cycle retries.
func UnknownToken() TokenInfo {
	return TokenInfo{Symbol: UnknownSymbol, Decimals: 18, PriceUSD: 0}
}
