package notify

import (
	"context"
	"fmt"
	"testing"

	"whaleScope/internal/filter"
	"whaleScope/internal/model"
)

type fakeSender struct {
	sent    []int64
	failFor map[int64]bool
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, _ string, _ []Button) error {
	if f.failFor[chatID] {
		return fmt.Errorf("transport rejected %d", chatID)
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func testAlert() Alert {
	return Alert{
		Chain:          model.ChainConfig{Key: "eth", Name: "Ethereum"},
		Transfer:       model.TransferEvent{TokenAddress: "0x1234567890abcdef1234567890abcdef12345678"},
		Info:           model.TokenInfo{Symbol: "ABC"},
		AmountTokens:   500,
		ValueUSD:       25000,
		Classification: filter.ClassificationReceived,
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{2: true}}
	dispatcher := NewDispatcher(sender, 0, 0, nil)

	delivered := dispatcher.Dispatch(context.Background(), []int64{1, 2, 3}, testAlert())
	if delivered != 2 {
		t.Fatalf("delivered mismatch: %d", delivered)
	}
	if len(sender.sent) != 2 || sender.sent[0] != 1 || sender.sent[1] != 3 {
		t.Fatalf("unexpected recipients: %v", sender.sent)
	}
}

func TestDispatchMirrorsOwnerToBroadcast(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, 7, 100, nil)

	delivered := dispatcher.Dispatch(context.Background(), []int64{7}, testAlert())
	if delivered != 1 {
		t.Fatalf("delivered mismatch: %d", delivered)
	}
	if len(sender.sent) != 2 || sender.sent[1] != 100 {
		t.Fatalf("expected broadcast mirror, got %v", sender.sent)
	}
}

func TestDispatchMirrorsDespiteOwnerFailure(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{7: true}}
	dispatcher := NewDispatcher(sender, 7, 100, nil)

	// The direct send to the owner fails; the broadcast channel is a
	// separate destination and must still receive the alert.
	delivered := dispatcher.Dispatch(context.Background(), []int64{7}, testAlert())
	if delivered != 0 {
		t.Fatalf("delivered mismatch: %d", delivered)
	}
	if len(sender.sent) != 1 || sender.sent[0] != 100 {
		t.Fatalf("expected broadcast mirror despite owner failure, got %v", sender.sent)
	}
}

func TestDispatchNoMirrorForOtherSubscribers(t *testing.T) {
	sender := &fakeSender{}
	dispatcher := NewDispatcher(sender, 7, 100, nil)

	dispatcher.Dispatch(context.Background(), []int64{8}, testAlert())
	if len(sender.sent) != 1 || sender.sent[0] != 8 {
		t.Fatalf("unexpected recipients: %v", sender.sent)
	}
}
