package model

import "math/big"

// TransferEvent is a single decoded ERC-20 Transfer log.
//
// Addresses are lower-case 0x-prefixed hex. RawAmount is the unscaled
// uint256 value from the log data; decimal scaling happens at filter time
// once token metadata is known.
type TransferEvent struct {
	ChainKey     string
	TokenAddress string
	From         string
	To           string
	RawAmount    *big.Int
}
