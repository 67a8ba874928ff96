package connector

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return NewRedisFromClient(client)
}

func TestRedis_SeedAndSearch(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, testCorpus()))

	answers, err := r.Search(ctx, "where is my order", 2)
	require.NoError(t, err)
	require.NotEmpty(t, answers)
	assert.Equal(t, "faq-001", answers[0].ID)
	assert.LessOrEqual(t, len(answers), 2)
}

func TestRedis_EmptyCorpus(t *testing.T) {
	r := newTestRedis(t)

	answers, err := r.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestRedis_SeedOverwritesByID(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, []Entry{{ID: "faq-001", Question: "Where is my order?", Answer: "Old answer about order."}}))
	require.NoError(t, r.Seed(ctx, []Entry{{ID: "faq-001", Question: "Where is my order?", Answer: "New answer about order."}}))

	answers, err := r.Search(ctx, "where is my order", 3)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "New answer about order.", answers[0].Answer)
}
