package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/flume/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultCorpusKey = "flume:faq"

// Redis is a knowledge connector whose corpus lives in a Redis hash
// (field = entry ID, value = JSON entry). go-redis clients are safe
// for concurrent use, so Search needs no engine-side locking.
type Redis struct {
	client *backend.Client
	key    string
}

// RedisOption configures the Redis connector.
type RedisOption func(*Redis)

// WithCorpusKey overrides the hash key the corpus is stored under.
func WithCorpusKey(key string) RedisOption {
	return func(r *Redis) {
		r.key = key
	}
}

// NewRedis creates a connector with its own client.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient creates a connector from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, key: defaultCorpusKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Seed ingests a corpus, overwriting entries with matching IDs.
func (r *Redis) Seed(ctx context.Context, entries []Entry) error {
	pipe := r.client.Pipeline()
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal corpus entry %s: %w", e.ID, err)
		}
		pipe.HSet(ctx, r.key, e.ID, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed corpus: %w", err)
	}
	return nil
}

// Search implements ports.KnowledgeConnector. The corpus is small
// (FAQ-scale), so it loads the hash and ranks in-process.
func (r *Redis) Search(ctx context.Context, query string, topK int) ([]domain.Answer, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	entries := make([]Entry, 0, len(fields))
	for id, raw := range fields {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("corrupt corpus entry %s: %w", id, err)
		}
		entries = append(entries, e)
	}
	// HGetAll order is not deterministic; fix it so ties rank stably.
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return rank(entries, query, topK), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
