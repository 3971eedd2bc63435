package erc20

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func transferLog(t *testing.T, token, from, to common.Address, value *big.Int) types.Log {
	t.Helper()
	parsed, err := transferABIInstance()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	data, err := parsed.Events["Transfer"].Inputs.NonIndexed().Pack(value)
	if err != nil {
		t.Fatalf("pack value: %v", err)
	}
	return types.Log{
		Address: token,
		Topics: []common.Hash{
			parsed.Events["Transfer"].ID,
			topicFromAddress(from),
			topicFromAddress(to),
		},
		Data: data,
	}
}

func TestDecodeTransfer(t *testing.T) {
	decoder, err := NewTransferDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	value := new(big.Int).SetUint64(123456789)

	event, err := decoder.Decode(transferLog(t, token, from, to, value), "eth")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if event.ChainKey != "eth" {
		t.Fatalf("chain key mismatch: %s", event.ChainKey)
	}
	if event.TokenAddress != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("token address mismatch: %s", event.TokenAddress)
	}
	if event.From != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("from mismatch: %s", event.From)
	}
	if event.To != "0x3333333333333333333333333333333333333333" {
		t.Fatalf("to mismatch: %s", event.To)
	}
	if event.RawAmount.Cmp(value) != 0 {
		t.Fatalf("value mismatch: %s", event.RawAmount)
	}
}

func TestDecodeRejectsEmptyData(t *testing.T) {
	decoder, err := NewTransferDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := transferLog(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(1),
	)
	log.Data = nil

	if _, err := decoder.Decode(log, "eth"); err == nil {
		t.Fatalf("expected error for empty data")
	}
}

func TestDecodeRejectsUnexpectedTopics(t *testing.T) {
	decoder, err := NewTransferDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	log := transferLog(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(1),
	)
	log.Topics = log.Topics[:2]

	if _, err := decoder.Decode(log, "eth"); err == nil {
		t.Fatalf("expected error for missing indexed topics")
	}
}
