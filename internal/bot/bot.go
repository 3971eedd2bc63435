package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"whaleScope/internal/model"
	"whaleScope/internal/notify"
	"whaleScope/internal/store"
)

// Bot handles subscriber configuration commands over the Telegram
// update feed. Validation failures are reported back to the chat and
// never mutate state.
type Bot struct {
	api      *notify.Telegram
	registry *store.Registry
	chains   []model.ChainConfig
	logger   *zap.Logger
}

// New builds a command bot.
func New(api *notify.Telegram, registry *store.Registry, chains []model.ChainConfig, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, registry: registry, chains: chains, logger: logger}
}

// Run long-polls the update feed until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := b.api.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("get updates failed", zap.Error(err))

			timer := time.NewTimer(3 * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			text := strings.TrimSpace(update.Message.Text)
			if text == "" || !strings.HasPrefix(text, "/") {
				continue
			}

			chatID := update.Message.Chat.ID
			reply := b.handleCommand(ctx, chatID, text)
			if reply == "" {
				continue
			}
			if err := b.api.SendMessage(ctx, chatID, reply, nil); err != nil {
				b.logger.Warn("command reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) string {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "/start":
		if err := b.registry.Register(ctx, chatID); err != nil {
			return commandError(err)
		}
		return fmt.Sprintf("Registered. Alert threshold is $%d; use /threshold to change it.", model.DefaultThresholdUSD)

	case "/stop":
		if err := b.registry.Unregister(ctx, chatID); err != nil {
			return commandError(err)
		}
		return "Unregistered. Send /start to come back."

	case "/threshold":
		if len(args) != 1 {
			return "Usage: /threshold <usd>"
		}
		usd, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "Threshold must be a number."
		}
		if err := b.registry.SetThreshold(ctx, chatID, usd); err != nil {
			return commandError(err)
		}
		return fmt.Sprintf("Threshold set to $%.0f.", usd)

	case "/block":
		if len(args) != 1 {
			return "Usage: /block <token-address>"
		}
		if err := b.registry.Block(ctx, chatID, args[0]); err != nil {
			return commandError(err)
		}
		return "Token blocked."

	case "/unblock":
		if len(args) != 1 {
			return "Usage: /unblock <token-address>"
		}
		if err := b.registry.Unblock(ctx, chatID, args[0]); err != nil {
			return commandError(err)
		}
		return "Token unblocked."

	case "/chain":
		if len(args) != 2 {
			return "Usage: /chain <key> <rpc-url>"
		}
		if err := b.registry.SetChainEndpoint(ctx, chatID, strings.ToLower(args[0]), args[1]); err != nil {
			return commandError(err)
		}
		return fmt.Sprintf("Endpoint for %s updated.", strings.ToLower(args[0]))

	case "/settings":
		return b.settingsReply(chatID)

	case "/help":
		return helpText

	default:
		return ""
	}
}

func (b *Bot) settingsReply(chatID int64) string {
	sub, ok := b.registry.Get(chatID)
	if !ok {
		return commandError(store.ErrNotRegistered)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Threshold: $%.0f\n", sub.Threshold())
	if len(sub.ChainEndpoints) > 0 {
		sb.WriteString("Chain endpoints:\n")
		for _, cc := range b.chains {
			if url, ok := sub.ChainEndpoints[cc.Key]; ok {
				fmt.Fprintf(&sb, "  %s: %s\n", cc.Key, url)
			}
		}
	}
	if len(sub.BlockedTokens) > 0 {
		fmt.Fprintf(&sb, "Blocked tokens: %d\n", len(sub.BlockedTokens))
		for _, addr := range sub.BlockedTokens {
			fmt.Fprintf(&sb, "  %s\n", addr)
		}
	}
	return sb.String()
}

const helpText = "Commands:\n" +
	"/start - register for whale alerts\n" +
	"/stop - unregister\n" +
	"/threshold <usd> - set alert threshold (min $100)\n" +
	"/block <address> - block a token\n" +
	"/unblock <address> - unblock a token\n" +
	"/chain <key> <rpc-url> - set a personal RPC endpoint\n" +
	"/settings - show current configuration"

// commandError turns a registry error into a user-visible reply,
// keeping internal persistence detail out of validation messages.
func commandError(err error) string {
	switch {
	case errors.Is(err, store.ErrThresholdTooLow),
		errors.Is(err, store.ErrInvalidAddress),
		errors.Is(err, store.ErrUnknownChain),
		errors.Is(err, store.ErrNotRegistered):
		return err.Error()
	default:
		return "Something went wrong, try again later."
	}
}
