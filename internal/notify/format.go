package notify

import (
	"fmt"
	"math"
	"strings"
)

// Block explorer token pages keyed by chain key. Unmapped chains fall
// back to the Ethereum explorer.
var explorerByChainKey = map[string]string{
	"eth":     "https://etherscan.io/token/",
	"arb":     "https://arbiscan.io/token/",
	"polygon": "https://polygonscan.com/token/",
	"bsc":     "https://bscscan.com/token/",
}

// ExplorerTokenURL returns the explorer page for a token contract.
func ExplorerTokenURL(chainKey, tokenAddress string) string {
	base, ok := explorerByChainKey[chainKey]
	if !ok {
		base = explorerByChainKey["eth"]
	}
	return base + tokenAddress
}

// SwapURL returns a link to acquire the token on the configured DEX.
func SwapURL(tokenAddress string) string {
	return "https://app.uniswap.org/#/swap?outputCurrency=" + tokenAddress
}

// formatAmount renders a token amount with two fractional digits.
func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// formatUSD renders a USD value with thousands separators and no
// fractional digits.
func formatUSD(value float64) string {
	whole := fmt.Sprintf("%.0f", math.Abs(value))

	var b strings.Builder
	if value < 0 {
		b.WriteByte('-')
	}
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 && (i > lead || lead > 0) {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// shortAddress abbreviates an address for display.
func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
