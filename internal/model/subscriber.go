package model

// DefaultThresholdUSD is assigned to newly registered subscribers.
const DefaultThresholdUSD = 10000

// MinThresholdUSD is the lowest threshold a subscriber may configure.
const MinThresholdUSD = 100

// Subscriber holds one chat's alert configuration.
//
// ChainEndpoints maps chain key to a personal RPC URL; subscribers with
// at least one entry are polled individually in per-subscriber mode.
// BlockedTokens holds lower-case token contract addresses.
type Subscriber struct {
	ID             int64             `json:"id"`
	ThresholdUSD   float64           `json:"threshold_usd"`
	ChainEndpoints map[string]string `json:"chain_endpoints,omitempty"`
	BlockedTokens  []string          `json:"blocked_tokens,omitempty"`
}

// NewSubscriber creates a subscriber record with default settings.
func NewSubscriber(id int64) *Subscriber {
	return &Subscriber{
		ID:           id,
		ThresholdUSD: DefaultThresholdUSD,
	}
}

// Threshold returns the configured threshold, falling back to the default
// when the stored value is unset.
func (s *Subscriber) Threshold() float64 {
	if s.ThresholdUSD <= 0 {
		return DefaultThresholdUSD
	}
	return s.ThresholdUSD
}

// HasBlocked reports whether the subscriber personally blocked the token.
func (s *Subscriber) HasBlocked(tokenAddress string) bool {
	for _, addr := range s.BlockedTokens {
		if addr == tokenAddress {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so scheduler snapshots never observe a
// partially updated record.
func (s *Subscriber) Clone() *Subscriber {
	out := &Subscriber{
		ID:           s.ID,
		ThresholdUSD: s.ThresholdUSD,
	}
	if len(s.ChainEndpoints) > 0 {
		out.ChainEndpoints = make(map[string]string, len(s.ChainEndpoints))
		for k, v := range s.ChainEndpoints {
			out.ChainEndpoints[k] = v
		}
	}
	if len(s.BlockedTokens) > 0 {
		out.BlockedTokens = append([]string(nil), s.BlockedTokens...)
	}
	return out
}
