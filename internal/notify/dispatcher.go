package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"whaleScope/internal/filter"
	"whaleScope/internal/model"
)

// Alert carries everything needed to render one whale notification.
type Alert struct {
	Chain          model.ChainConfig
	Transfer       model.TransferEvent
	Info           model.TokenInfo
	AmountTokens   float64
	ValueUSD       float64
	Classification filter.Classification
}

// Sender delivers a formatted message to one chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons []Button) error
}

// Dispatcher formats alerts and fans them out to destinations. When the
// alerted subscriber is the configured owner, the alert is mirrored to
// the broadcast channel as well.
type Dispatcher struct {
	sender          Sender
	ownerID         int64
	broadcastChatID int64
	logger          *zap.Logger
}

// NewDispatcher builds a dispatcher. ownerID and broadcastChatID may be
// zero to disable the broadcast mirror.
func NewDispatcher(sender Sender, ownerID, broadcastChatID int64, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:          sender,
		ownerID:         ownerID,
		broadcastChatID: broadcastChatID,
		logger:          logger,
	}
}

// Dispatch sends the alert to every chat, returning how many deliveries
// succeeded. One failed destination never blocks the others.
func (d *Dispatcher) Dispatch(ctx context.Context, chatIDs []int64, alert Alert) int {
	text := FormatAlert(alert)
	buttons := []Button{
		{Text: "🛒 Buy on Uniswap", URL: SwapURL(alert.Transfer.TokenAddress)},
		{Text: "🔎 Explorer", URL: ExplorerTokenURL(alert.Chain.Key, alert.Transfer.TokenAddress)},
	}

	delivered := 0
	for _, chatID := range chatIDs {
		if err := d.sender.SendMessage(ctx, chatID, text, buttons); err != nil {
			d.logger.Warn("alert delivery failed",
				zap.Int64("chat_id", chatID),
				zap.String("token", alert.Transfer.TokenAddress),
				zap.Error(err),
			)
		} else {
			delivered++
		}

		// The mirror is routed on owner identity alone; a failed direct
		// send to the owner must not suppress it.
		if d.broadcastChatID != 0 && d.ownerID != 0 && chatID == d.ownerID {
			if err := d.sender.SendMessage(ctx, d.broadcastChatID, text, buttons); err != nil {
				d.logger.Warn("broadcast mirror failed",
					zap.Int64("chat_id", d.broadcastChatID),
					zap.Error(err),
				)
			}
		}
	}
	return delivered
}

// FormatAlert renders the human-readable alert text.
func FormatAlert(alert Alert) string {
	verb := "received"
	if alert.Classification == filter.ClassificationBought {
		verb = "bought"
	}
	return fmt.Sprintf(
		"🐋 *Whale Alert* (%s)\nWhale %s *%s %s* (~$%s)\nToken: `%s`",
		alert.Chain.Name,
		verb,
		formatAmount(alert.AmountTokens),
		alert.Info.Symbol,
		formatUSD(alert.ValueUSD),
		shortAddress(alert.Transfer.TokenAddress),
	)
}
