package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *Notice, 1)
	sub := NewSubscriber(client)
	go func() {
		_ = sub.Subscribe(ctx, func(n *Notice) {
			received <- n
		})
	}()

	// Let the subscription register before publishing.
	time.Sleep(50 * time.Millisecond)

	pub := NewPublisher(client)
	err := pub.Publish(ctx, &Notice{
		UserID:         7,
		NotificationID: 3,
		Event:          "membership_purchased",
		Message:        "Welcome to the Professional tier",
		MembershipID:   "BN-PUBSUB01",
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	select {
	case n := <-received:
		assert.Equal(t, "notification", n.Type)
		assert.Equal(t, int64(7), n.UserID)
		assert.Equal(t, int64(3), n.NotificationID)
		assert.Equal(t, "membership_purchased", n.Event)
		assert.Equal(t, "BN-PUBSUB01", n.MembershipID)
	case <-time.After(2 * time.Second):
		t.Fatal("notice was not delivered")
	}
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, func(*Notice) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
