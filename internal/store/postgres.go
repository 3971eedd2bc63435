package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"whaleScope/internal/model"
)

// PostgresStore persists subscribers in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS subscribers (
			id BIGINT PRIMARY KEY,
			threshold_usd DOUBLE PRECISION NOT NULL,
			chain_endpoints JSONB NOT NULL DEFAULT '{}'::jsonb,
			blocked_tokens JSONB NOT NULL DEFAULT '[]'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load reads all subscriber rows.
func (s *PostgresStore) Load(ctx context.Context) (map[int64]*model.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, threshold_usd, chain_endpoints, blocked_tokens FROM subscribers
	`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	subs := make(map[int64]*model.Subscriber)
	for rows.Next() {
		var (
			sub           model.Subscriber
			endpointsJSON []byte
			blockedJSON   []byte
		)
		if err := rows.Scan(&sub.ID, &sub.ThresholdUSD, &endpointsJSON, &blockedJSON); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if err := json.Unmarshal(endpointsJSON, &sub.ChainEndpoints); err != nil {
			return nil, fmt.Errorf("parse chain endpoints for %d: %w", sub.ID, err)
		}
		if err := json.Unmarshal(blockedJSON, &sub.BlockedTokens); err != nil {
			return nil, fmt.Errorf("parse blocked tokens for %d: %w", sub.ID, err)
		}
		subs[sub.ID] = &sub
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}

// Save upserts every subscriber and removes rows no longer present.
func (s *PostgresStore) Save(ctx context.Context, subs map[int64]*model.Subscriber) error {
	ids := make([]int64, 0, len(subs))
	batch := &pgx.Batch{}
	for id, sub := range subs {
		ids = append(ids, id)

		endpoints := sub.ChainEndpoints
		if endpoints == nil {
			endpoints = map[string]string{}
		}
		endpointsJSON, err := json.Marshal(endpoints)
		if err != nil {
			return fmt.Errorf("marshal chain endpoints for %d: %w", id, err)
		}

		blocked := sub.BlockedTokens
		if blocked == nil {
			blocked = []string{}
		}
		blockedJSON, err := json.Marshal(blocked)
		if err != nil {
			return fmt.Errorf("marshal blocked tokens for %d: %w", id, err)
		}

		batch.Queue(`
			INSERT INTO subscribers (id, threshold_usd, chain_endpoints, blocked_tokens, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (id)
			DO UPDATE SET
				threshold_usd = EXCLUDED.threshold_usd,
				chain_endpoints = EXCLUDED.chain_endpoints,
				blocked_tokens = EXCLUDED.blocked_tokens,
				updated_at = now()
		`, id, sub.ThresholdUSD, endpointsJSON, blockedJSON)
	}
	batch.Queue(`DELETE FROM subscribers WHERE NOT (id = ANY($1))`, ids)

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save subscribers: %w", err)
		}
	}
	return nil
}
