package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) *Queue {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewQueue(client, "test_events")
}

func TestPushPop(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	sent := &EventMessage{
		Event:        EventPurchased,
		UserID:       1,
		MembershipID: "BN-QUEUE001",
		Tier:         "Basic",
		Amount:       99,
		OccurredAt:   time.Now().UTC(),
	}
	require.NoError(t, q.Push(ctx, sent))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sent.Event, got.Event)
	assert.Equal(t, sent.UserID, got.UserID)
	assert.Equal(t, sent.MembershipID, got.MembershipID)
	assert.Equal(t, sent.Amount, got.Amount)
	assert.True(t, sent.OccurredAt.Equal(got.OccurredAt))
}

func TestPopOrder(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, &EventMessage{Event: EventPurchased, UserID: 1}))
	require.NoError(t, q.Push(ctx, &EventMessage{Event: EventCancelled, UserID: 1}))

	first, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, EventPurchased, first.Event)

	second, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, EventCancelled, second.Event)
}

func TestPopEmptyQueue(t *testing.T) {
	q := setupQueue(t)

	msg, err := q.Pop(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)
}
