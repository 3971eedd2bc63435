package filter

import (
	"math/big"
	"strings"

	"whaleScope/internal/model"
)

// Classification says how the recipient came by the tokens.
type Classification string

const (
	ClassificationBought   Classification = "bought"
	ClassificationReceived Classification = "received"
)

// Decision is the outcome of evaluating one transfer for one subscriber.
type Decision struct {
	Accept         bool
	Classification Classification
	AmountTokens   float64
	ValueUSD       float64
}

// Engine applies the layered accept/reject policy. It holds only the
// static block and router sets, so Decide is a pure function of its
// inputs and safe to share across goroutines.
type Engine struct {
	blocked AddressSet
	routers AddressSet
}

// NewEngine builds an engine with the process-wide block and router sets.
func NewEngine() *Engine {
	return &Engine{
		blocked: GlobalBlockList(),
		routers: DexRouters(),
	}
}

// NewEngineWithSets builds an engine with custom sets.
func NewEngineWithSets(blocked, routers AddressSet) *Engine {
	return &Engine{blocked: blocked, routers: routers}
}

// Decide evaluates a transfer for a single subscriber.
//
// Policy order:
//  1. unresolved price (0) rejects outright
//  2. classify as bought when the sender is a known router
//  3. the subscriber's personal block-list rejects unconditionally
//  4. the global block-list rejects unless the transfer was bought
//     through a router
//  5. USD value below the subscriber threshold rejects
func (e *Engine) Decide(transfer model.TransferEvent, info model.TokenInfo, sub *model.Subscriber) Decision {
	decision := Decision{Classification: e.classify(transfer)}

	if info.PriceUSD == 0 {
		return decision
	}

	decision.AmountTokens = scaleAmount(transfer.RawAmount, info.Decimals)
	decision.ValueUSD = decision.AmountTokens * info.PriceUSD

	if sub.HasBlocked(transfer.TokenAddress) {
		return decision
	}
	if e.blocked.Contains(transfer.TokenAddress) && decision.Classification != ClassificationBought {
		return decision
	}
	if decision.ValueUSD < sub.Threshold() {
		return decision
	}

	decision.Accept = true
	return decision
}

func (e *Engine) classify(transfer model.TransferEvent) Classification {
	if e.routers.Contains(strings.ToLower(transfer.From)) {
		return ClassificationBought
	}
	return ClassificationReceived
}

// scaleAmount converts the raw uint256 amount into whole tokens. The
// big.Float division keeps precision through the scaling; the final
// float64 matches the precision of the upstream price feed.
func scaleAmount(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	amount := new(big.Float).Quo(new(big.Float).SetInt(raw), new(big.Float).SetInt(scale))
	out, _ := amount.Float64()
	return out
}
