package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"whaleScope/internal/model"
)

// Validation errors surfaced to the subscriber; no state mutates when
// one of these is returned.
var (
	ErrThresholdTooLow = fmt.Errorf("threshold must be at least $%d", model.MinThresholdUSD)
	ErrInvalidAddress  = errors.New("token address must be 42-character 0x hex")
	ErrUnknownChain    = errors.New("unknown chain key")
	ErrNotRegistered   = errors.New("not registered, send /start first")
)

// Registry is the in-memory subscriber state, guarded by a coarse lock
// and written through to the backing store on every mutation.
type Registry struct {
	store     Store
	chainKeys map[string]struct{}
	logger    *zap.Logger

	mu   sync.RWMutex
	subs map[int64]*model.Subscriber
}

// NewRegistry loads subscriber state from the store.
func NewRegistry(ctx context.Context, backing Store, chains []model.ChainConfig, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	subs, err := backing.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	chainKeys := make(map[string]struct{}, len(chains))
	for _, chain := range chains {
		chainKeys[chain.Key] = struct{}{}
	}

	return &Registry{
		store:     backing,
		chainKeys: chainKeys,
		logger:    logger,
		subs:      subs,
	}, nil
}

// Register creates a subscriber with default settings on first contact.
// Registering an existing id is a no-op.
func (r *Registry) Register(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; ok {
		return nil
	}
	return r.commit(ctx, id, model.NewSubscriber(id))
}

// Unregister destroys the subscriber record.
func (r *Registry) Unregister(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return ErrNotRegistered
	}
	return r.commit(ctx, id, nil)
}

// SetThreshold updates the subscriber's USD threshold. Values below the
// floor are rejected and the stored threshold is left unchanged.
func (r *Registry) SetThreshold(ctx context.Context, id int64, usd float64) error {
	if usd < model.MinThresholdUSD {
		return ErrThresholdTooLow
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return ErrNotRegistered
	}
	next := sub.Clone()
	next.ThresholdUSD = usd
	return r.commit(ctx, id, next)
}

// Block adds a token address to the subscriber's personal block-list.
func (r *Registry) Block(ctx context.Context, id int64, tokenAddress string) error {
	addr, err := normalizeAddress(tokenAddress)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return ErrNotRegistered
	}
	if sub.HasBlocked(addr) {
		return nil
	}
	next := sub.Clone()
	next.BlockedTokens = append(next.BlockedTokens, addr)
	return r.commit(ctx, id, next)
}

// Unblock removes a token address from the personal block-list.
func (r *Registry) Unblock(ctx context.Context, id int64, tokenAddress string) error {
	addr, err := normalizeAddress(tokenAddress)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return ErrNotRegistered
	}
	next := sub.Clone()
	kept := next.BlockedTokens[:0]
	for _, blocked := range next.BlockedTokens {
		if blocked != addr {
			kept = append(kept, blocked)
		}
	}
	next.BlockedTokens = kept
	return r.commit(ctx, id, next)
}

// SetChainEndpoint stores a personal RPC endpoint for a configured chain.
func (r *Registry) SetChainEndpoint(ctx context.Context, id int64, chainKey, rpcURL string) error {
	if _, ok := r.chainKeys[chainKey]; !ok {
		return ErrUnknownChain
	}
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return errors.New("rpc url is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return ErrNotRegistered
	}
	next := sub.Clone()
	if next.ChainEndpoints == nil {
		next.ChainEndpoints = make(map[string]string)
	}
	next.ChainEndpoints[chainKey] = rpcURL
	return r.commit(ctx, id, next)
}

// Get returns a copy of one subscriber record.
func (r *Registry) Get(id int64) (*model.Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[id]
	if !ok {
		return nil, false
	}
	return sub.Clone(), true
}

// Snapshot returns deep copies of all subscribers, so a poll cycle never
// observes a partially updated record.
func (r *Registry) Snapshot() []*model.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub.Clone())
	}
	return out
}

// commit installs next as the record for id (nil deletes it), then
// writes through to the backing store. A failed save rolls the map back
// so memory never diverges from durable state. Callers hold the lock.
func (r *Registry) commit(ctx context.Context, id int64, next *model.Subscriber) error {
	prev, had := r.subs[id]
	if next == nil {
		delete(r.subs, id)
	} else {
		r.subs[id] = next
	}
	if err := r.store.Save(ctx, r.subs); err != nil {
		if had {
			r.subs[id] = prev
		} else {
			delete(r.subs, id)
		}
		r.logger.Error("persist subscribers failed", zap.Error(err))
		return fmt.Errorf("persist subscribers: %w", err)
	}
	return nil
}

func normalizeAddress(input string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(input))
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") || !common.IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	return addr, nil
}
