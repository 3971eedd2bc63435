package store

import (
	"context"

	"whaleScope/internal/model"
)

// Store persists subscriber records. Load is the source of truth at
// startup; Save replaces the full set after every mutation.
type Store interface {
	Load(ctx context.Context) (map[int64]*model.Subscriber, error)
	Save(ctx context.Context, subs map[int64]*model.Subscriber) error
}
