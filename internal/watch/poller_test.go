package watch

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"whaleScope/internal/erc20"
	"whaleScope/internal/model"
)

type fakeChain struct {
	latest  uint64
	logs    []types.Log
	dialErr error
	logsErr error

	filterFrom uint64
	filterTo   uint64
	closed     bool
}

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, fromBlock, toBlock uint64, _ common.Hash) ([]types.Log, error) {
	f.filterFrom = fromBlock
	f.filterTo = toBlock
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs, nil
}

func (f *fakeChain) Close() { f.closed = true }

func dialerFor(fake *fakeChain) Dialer {
	return func(context.Context, string) (ChainReader, error) {
		if fake.dialErr != nil {
			return nil, fake.dialErr
		}
		return fake, nil
	}
}

func packedTransferLog(t *testing.T, token, from, to common.Address, value *big.Int) types.Log {
	t.Helper()
	topic, err := erc20.TransferTopic()
	if err != nil {
		t.Fatalf("transfer topic: %v", err)
	}

	// abi-encode the uint256 value as 32 bytes.
	data := make([]byte, 32)
	value.FillBytes(data)

	return types.Log{
		Address: token,
		Topics: []common.Hash{
			topic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func testPoller(t *testing.T, fake *fakeChain) *Poller {
	t.Helper()
	poller, err := NewPoller(PollerConfig{BlockWindow: 6}, dialerFor(fake), nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	return poller
}

func TestPollTrailingWindow(t *testing.T) {
	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")

	fake := &fakeChain{
		latest: 1000,
		logs:   []types.Log{packedTransferLog(t, token, from, to, big.NewInt(777))},
	}
	poller := testPoller(t, fake)

	events := poller.Poll(context.Background(), model.ChainConfig{Key: "eth", Name: "Ethereum"})
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if fake.filterFrom != 995 || fake.filterTo != 1000 {
		t.Fatalf("window mismatch: %d-%d", fake.filterFrom, fake.filterTo)
	}
	if events[0].RawAmount.Int64() != 777 {
		t.Fatalf("value mismatch: %s", events[0].RawAmount)
	}
	if !fake.closed {
		t.Fatalf("chain connection not closed")
	}
}

func TestPollIsolatesBadLogs(t *testing.T) {
	token := common.HexToAddress("0x1111111111111111111111111111111111111111")
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")
	to := common.HexToAddress("0x3333333333333333333333333333333333333333")

	good := packedTransferLog(t, token, from, to, big.NewInt(5))
	truncated := packedTransferLog(t, token, from, to, big.NewInt(5))
	truncated.Topics = truncated.Topics[:2]
	empty := packedTransferLog(t, token, from, to, big.NewInt(5))
	empty.Data = nil

	fake := &fakeChain{latest: 100, logs: []types.Log{truncated, empty, good}}
	poller := testPoller(t, fake)

	events := poller.Poll(context.Background(), model.ChainConfig{Key: "eth", Name: "Ethereum"})
	if len(events) != 1 {
		t.Fatalf("expected the surviving event only, got %d", len(events))
	}
}

func TestPollUnreachableChainYieldsEmpty(t *testing.T) {
	fake := &fakeChain{dialErr: fmt.Errorf("connection refused")}
	poller := testPoller(t, fake)

	if events := poller.Poll(context.Background(), model.ChainConfig{Key: "eth"}); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestPollFilterErrorYieldsEmpty(t *testing.T) {
	fake := &fakeChain{latest: 100, logsErr: fmt.Errorf("rpc timeout")}
	poller := testPoller(t, fake)

	if events := poller.Poll(context.Background(), model.ChainConfig{Key: "eth"}); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestPollWindowUnderflow(t *testing.T) {
	fake := &fakeChain{latest: 3}
	poller := testPoller(t, fake)

	poller.Poll(context.Background(), model.ChainConfig{Key: "eth"})
	if fake.filterFrom != 0 || fake.filterTo != 3 {
		t.Fatalf("window mismatch near genesis: %d-%d", fake.filterFrom, fake.filterTo)
	}
}
