package watch

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"whaleScope/internal/chain"
	"whaleScope/internal/erc20"
	"whaleScope/internal/model"
)

// ChainReader is the chain-side surface the poller needs.
type ChainReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, topic0 common.Hash) ([]types.Log, error)
	Close()
}

// Dialer opens a chain connection for an RPC URL.
type Dialer func(ctx context.Context, rpcURL string) (ChainReader, error)

// DialChain is the production dialer backed by go-ethereum.
func DialChain(ctx context.Context, rpcURL string) (ChainReader, error) {
	return chain.Dial(ctx, rpcURL)
}

// PollerConfig holds poll window and retry settings.
type PollerConfig struct {
	BlockWindow  uint64
	PollTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Poller reads the trailing block window of one chain and decodes its
// Transfer logs.
type Poller struct {
	cfg     PollerConfig
	dial    Dialer
	decoder *erc20.TransferDecoder
	logger  *zap.Logger
}

// NewPoller builds a poller. A nil dialer defaults to DialChain.
func NewPoller(cfg PollerConfig, dial Dialer, logger *zap.Logger) (*Poller, error) {
	if dial == nil {
		dial = DialChain
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := erc20.NewTransferDecoder()
	if err != nil {
		return nil, err
	}
	return &Poller{cfg: cfg, dial: dial, decoder: decoder, logger: logger}, nil
}

// Poll fetches and decodes transfers from the chain's trailing window.
// An unreachable chain yields an empty batch, never an error: the caller
// treats it as "no events this cycle". A single undecodable log is
// logged and skipped without aborting the batch.
func (p *Poller) Poll(ctx context.Context, cc model.ChainConfig) []model.TransferEvent {
	if p.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.PollTimeout)
		defer cancel()
	}

	client, err := p.dial(ctx, cc.RPCURL)
	if err != nil {
		p.logger.Warn("chain unreachable", zap.String("chain", cc.Key), zap.Error(err))
		return nil
	}
	defer client.Close()

	var latest uint64
	err = withRetry(ctx, "latest block", p.cfg, p.logger, func(ctx context.Context) error {
		var err error
		latest, err = client.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		p.logger.Warn("latest block fetch failed", zap.String("chain", cc.Key), zap.Error(err))
		return nil
	}

	from := uint64(0)
	if latest >= p.cfg.BlockWindow {
		from = latest - p.cfg.BlockWindow + 1
	}

	topic, err := erc20.TransferTopic()
	if err != nil {
		p.logger.Error("transfer topic unavailable", zap.Error(err))
		return nil
	}

	var logs []types.Log
	err = withRetry(ctx, "filter logs", p.cfg, p.logger, func(ctx context.Context) error {
		var err error
		logs, err = client.FilterLogs(ctx, from, latest, topic)
		return err
	})
	if err != nil {
		p.logger.Warn("filter logs failed",
			zap.String("chain", cc.Key),
			zap.Uint64("from", from),
			zap.Uint64("to", latest),
			zap.Error(err),
		)
		return nil
	}

	events := make([]model.TransferEvent, 0, len(logs))
	for _, log := range logs {
		if len(log.Data) == 0 {
			continue
		}
		event, err := p.decoder.Decode(log, cc.Key)
		if err != nil {
			p.logger.Warn("transfer decode failed",
				zap.String("chain", cc.Key),
				zap.String("tx", log.TxHash.Hex()),
				zap.Error(err),
			)
			continue
		}
		events = append(events, event)
	}

	p.logger.Debug("poll complete",
		zap.String("chain", cc.Key),
		zap.Uint64("from", from),
		zap.Uint64("to", latest),
		zap.Int("transfers", len(events)),
	)
	return events
}
