package erc20

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"whaleScope/internal/model"
)

const transferABIJSON = `[
  {"anonymous": false, "inputs": [
    {"indexed": true, "name": "from", "type": "address"},
    {"indexed": true, "name": "to", "type": "address"},
    {"indexed": false, "name": "value", "type": "uint256"}
  ], "name": "Transfer", "type": "event"}
]`

var (
	transferABI     abi.ABI
	transferABIOnce sync.Once
	transferABIErr  error
)

func transferABIInstance() (abi.ABI, error) {
	transferABIOnce.Do(func() {
		transferABI, transferABIErr = abi.JSON(strings.NewReader(transferABIJSON))
	})
	return transferABI, transferABIErr
}

// TransferTopic returns the topic0 hash of the ERC-20 Transfer event.
func TransferTopic() (common.Hash, error) {
	parsed, err := transferABIInstance()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events["Transfer"].ID, nil
}

// TransferDecoder decodes raw chain logs into TransferEvent records.
type TransferDecoder struct {
	parsed abi.ABI
	topic  common.Hash
}

// NewTransferDecoder builds a decoder for the standard Transfer shape.
func NewTransferDecoder() (*TransferDecoder, error) {
	parsed, err := transferABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse transfer abi: %w", err)
	}
	return &TransferDecoder{
		parsed: parsed,
		topic:  parsed.Events["Transfer"].ID,
	}, nil
}

// Decode converts a single log into a TransferEvent.
//
// ERC-721 Transfer logs share the same topic0 but carry the token id as a
// third indexed topic and no data payload; the empty-data check filters
// them out along with malformed entries.
func (d *TransferDecoder) Decode(log types.Log, chainKey string) (model.TransferEvent, error) {
	if len(log.Data) == 0 {
		return model.TransferEvent{}, fmt.Errorf("empty log data")
	}
	if len(log.Topics) != 3 {
		return model.TransferEvent{}, fmt.Errorf("unexpected topic count: %d", len(log.Topics))
	}
	if log.Topics[0] != d.topic {
		return model.TransferEvent{}, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}

	values, err := d.parsed.Events["Transfer"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("unpack transfer data: %w", err)
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return model.TransferEvent{}, fmt.Errorf("unexpected value type %T", values[0])
	}

	return model.TransferEvent{
		ChainKey:     chainKey,
		TokenAddress: strings.ToLower(log.Address.Hex()),
		From:         strings.ToLower(common.BytesToAddress(log.Topics[1].Bytes()).Hex()),
		To:           strings.ToLower(common.BytesToAddress(log.Topics[2].Bytes()).Hex()),
		RawAmount:    value,
	}, nil
}
