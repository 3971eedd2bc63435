package filter

// AddressSet is a membership set of lower-case hex addresses.
type AddressSet map[string]struct{}

// NewAddressSet builds a set from the given addresses.
func NewAddressSet(addresses ...string) AddressSet {
	set := make(AddressSet, len(addresses))
	for _, addr := range addresses {
		set[addr] = struct{}{}
	}
	return set
}

// Contains reports membership of the address.
func (s AddressSet) Contains(address string) bool {
	_, ok := s[address]
	return ok
}

// GlobalBlockList returns the process-wide set of tokens considered
// noise: major stablecoins, wrapped natives, liquid-staking derivatives,
// and known meme tokens. Replacing it requires a redeploy.
func GlobalBlockList() AddressSet {
	return NewAddressSet(
		"0xaf88d065e77c8cc2239327c5edb3a432268e5831", // USDC.e
		"0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9", // USDT
		"0x82af49447d8a07e3bd95bd0d56f35241523fbab1", // WETH Arbitrum
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", // WETH Mainnet
		"0x6b175474e89094c44da98b954eedeac495271d0f", // DAI
		"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", // WBTC
		"0xae7ab96520de3a18e5e111b5eaab095312d7fe84", // stETH
		"0x7f39c581f595b53c5cb5afef0c4b921e9d88207c", // wstETH
		"0xae78736cd615f374d3085123a210448e74fc6393", // rETH
		"0x853d955acef822db058eb8505911ed77f175b99e", // FRAX
		"0x5f98805a4e8be255a32880fdec7f6728c6568ba0", // LUSD
		"0x6982508145454ce325ddbe47a25d4ec3d2311933", // PEPE
		"0xc36442b4a4522e871399cd717abdd847ab11fe88", // SPX
	)
}

// DexRouters returns the known DEX router addresses. A transfer whose
// sender is a router is classified as a purchase.
func DexRouters() AddressSet {
	return NewAddressSet(
		"0x5c69bee701ef814a2b6a3edd4b1652cb9cc5aa6f", // Uniswap V2 factory
		"0xe592427a0aece92de3edee1f18e0157c05861564", // Uniswap V3 router
		"0x10ed43c718714eb63d5aa57b78b54704e256024e", // PancakeSwap router
		"0xcde540d7eafe93ac5fe6233bee57e1270d3e330f", // SushiSwap router
	)
}
