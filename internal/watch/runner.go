package watch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"whaleScope/internal/config"
	"whaleScope/internal/filter"
	"whaleScope/internal/model"
	"whaleScope/internal/notify"
)

// TransferSource polls one chain for recent transfers.
type TransferSource interface {
	Poll(ctx context.Context, cc model.ChainConfig) []model.TransferEvent
}

// InfoResolver resolves token metadata.
type InfoResolver interface {
	Resolve(ctx context.Context, chainKey, tokenAddress, chainName string) model.TokenInfo
}

// AlertSink fans an alert out to destinations and reports deliveries.
type AlertSink interface {
	Dispatch(ctx context.Context, chatIDs []int64, alert notify.Alert) int
}

// SubscriberSource supplies a consistent subscriber snapshot per cycle.
type SubscriberSource interface {
	Snapshot() []*model.Subscriber
}

// RunConfig holds runtime settings for the scheduler loop.
type RunConfig struct {
	Mode          string
	Chains        []model.ChainConfig
	Interval      time.Duration
	DefaultChatID int64
	ThresholdUSD  float64
}

// Runner is the top-level control loop. It drives the poller, enriches
// transfers with token metadata, evaluates the filter policy per
// subscriber, and hands accepted transfers to the dispatcher.
type Runner struct {
	cfg         RunConfig
	poller      TransferSource
	resolver    InfoResolver
	engine      *filter.Engine
	dispatcher  AlertSink
	subscribers SubscriberSource
	logger      *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(
	cfg RunConfig,
	poller TransferSource,
	resolver InfoResolver,
	engine *filter.Engine,
	dispatcher AlertSink,
	subscribers SubscriberSource,
	logger *zap.Logger,
) (*Runner, error) {
	if poller == nil || resolver == nil || engine == nil || dispatcher == nil {
		return nil, fmt.Errorf("runner dependencies are incomplete")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		poller:      poller,
		resolver:    resolver,
		engine:      engine,
		dispatcher:  dispatcher,
		subscribers: subscribers,
		logger:      logger,
	}, nil
}

// Run executes poll cycles until the context is canceled. No failure
// inside a cycle terminates the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("watcher start",
		zap.String("mode", r.cfg.Mode),
		zap.Int("chains", len(r.cfg.Chains)),
		zap.Duration("interval", r.cfg.Interval),
	)

	for {
		dispatched := r.runCycle(ctx)
		r.logger.Info("cycle complete", zap.Int("dispatched", dispatched))

		timer := time.NewTimer(r.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Runner) runCycle(ctx context.Context) int {
	switch r.cfg.Mode {
	case config.ModePerSubscriber:
		return r.perSubscriberCycle(ctx)
	default:
		return r.singleShotCycle(ctx)
	}
}

// singleShotCycle iterates chains in precedence order and stops at the
// first chain that produced a dispatched alert. This trades completeness
// for rate-limit friendliness.
func (r *Runner) singleShotCycle(ctx context.Context) int {
	subs := r.cycleSubscribers()

	for _, cc := range r.cfg.Chains {
		if ctx.Err() != nil {
			return 0
		}
		dispatched := r.processChain(ctx, cc, subs)
		if dispatched > 0 {
			return dispatched
		}
	}
	return 0
}

// perSubscriberCycle polls every chain a subscriber has a personal
// endpoint for and evaluates transfers against that subscriber only.
// There is no early exit: every accepted transfer is dispatched.
func (r *Runner) perSubscriberCycle(ctx context.Context) int {
	dispatched := 0
	for _, sub := range r.cycleSubscribers() {
		if ctx.Err() != nil {
			return dispatched
		}
		if len(sub.ChainEndpoints) == 0 {
			continue
		}
		for _, cc := range r.cfg.Chains {
			endpoint, ok := sub.ChainEndpoints[cc.Key]
			if !ok {
				continue
			}
			dispatched += r.processChain(ctx, cc.WithEndpoint(endpoint), []*model.Subscriber{sub})
		}
	}
	return dispatched
}

// processChain runs one chain through the full pipeline for the given
// subscribers. Any panic from a misbehaving upstream payload is confined
// to this unit of work.
func (r *Runner) processChain(ctx context.Context, cc model.ChainConfig, subs []*model.Subscriber) (dispatched int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("chain processing panicked",
				zap.String("chain", cc.Key),
				zap.Any("panic", rec),
			)
		}
	}()

	for _, event := range r.poller.Poll(ctx, cc) {
		info := r.resolver.Resolve(ctx, cc.Key, event.TokenAddress, cc.Name)

		for _, sub := range subs {
			decision := r.engine.Decide(event, info, sub)
			if !decision.Accept {
				continue
			}

			alert := notify.Alert{
				Chain:          cc,
				Transfer:       event,
				Info:           info,
				AmountTokens:   decision.AmountTokens,
				ValueUSD:       decision.ValueUSD,
				Classification: decision.Classification,
			}
			dispatched += r.dispatcher.Dispatch(ctx, []int64{sub.ID}, alert)
		}
	}
	return dispatched
}

// cycleSubscribers snapshots the registry; with nobody registered the
// configured default chat acts as the sole subscriber.
func (r *Runner) cycleSubscribers() []*model.Subscriber {
	var subs []*model.Subscriber
	if r.subscribers != nil {
		subs = r.subscribers.Snapshot()
	}
	if len(subs) == 0 && r.cfg.DefaultChatID != 0 {
		subs = []*model.Subscriber{{
			ID:           r.cfg.DefaultChatID,
			ThresholdUSD: r.cfg.ThresholdUSD,
		}}
	}
	return subs
}
