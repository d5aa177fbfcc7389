package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Membership lifecycle event types.
const (
	EventPurchased   = "membership_purchased"
	EventDeactivated = "membership_deactivated"
	EventDowngraded  = "membership_downgraded"
	EventCancelled   = "membership_cancelled"
	EventExpired     = "membership_expired"
)

// EventMessage is one membership lifecycle event on the wire.
type EventMessage struct {
	Event        string    `json:"event"`
	UserID       int64     `json:"user_id"`
	MembershipID string    `json:"membership_id"`
	Tier         string    `json:"tier"`
	PreviousTier string    `json:"previous_tier,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Queue struct {
	client    *redis.Client
	queueName string
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push appends an event to the queue.
func (q *Queue) Push(ctx context.Context, msg *EventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks until an event is available or the timeout elapses. A nil
// message with a nil error means the timeout hit with an empty queue.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*EventMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg EventMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &msg, nil
}

// Length reports the number of queued events.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
