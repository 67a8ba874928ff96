package ticket

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/flume/pkg/domain"
)

// RedisStore persists tickets in Redis. Each ticket lives under its
// own key; a ZSET ordered by save sequence backs List, and NextID is
// an atomic counter so concurrent servers never hand out the same id.
type RedisStore struct {
	client *backend.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithPrefix sets the key prefix for tickets.
func WithPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to Redis and returns a ticket store.
func NewRedisStore(address, password string, db int, opts ...RedisStoreOption) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisStoreOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: "flume:ticket:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) counterKey() string {
	return s.prefix + "counter"
}

// Save persists the ticket and records it in the insertion index.
func (s *RedisStore) Save(ctx context.Context, t *domain.Ticket) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.prefix+"seq").Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(t.TicketID), data, 0)
	// NX keeps the original insertion position when a ticket is rewritten.
	pipe.ZAddNX(ctx, s.indexKey(), backend.Z{
		Score:  float64(seq),
		Member: t.TicketID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get loads a ticket by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var t domain.Ticket
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
	}
	return &t, nil
}

// List returns all tickets in the order they were first saved.
func (s *RedisStore) List(ctx context.Context) ([]domain.Ticket, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var t domain.Ticket
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// NextID atomically allocates the next sequential ticket identifier.
func (s *RedisStore) NextID(ctx context.Context) (string, error) {
	n, err := s.client.Incr(ctx, s.counterKey()).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate ticket id: %w", err)
	}
	return fmt.Sprintf("TKT-%03d", n), nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
