package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotifications = "membership_notifications"
)

// Notice is a delivered notification fanned out to live subscribers
// (the API servers push these to connected websocket clients).
type Notice struct {
	Type           string    `json:"type"`
	UserID         int64     `json:"user_id"`
	NotificationID int64     `json:"notification_id"`
	Event          string    `json:"event"`
	Message        string    `json:"message"`
	MembershipID   string    `json:"membership_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish fans a notice out to all subscribed servers.
func (p *Publisher) Publish(ctx context.Context, notice *Notice) error {
	notice.Type = "notification"

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	return p.client.Publish(ctx, ChannelNotifications, data).Err()
}

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe blocks, invoking handler for each notice until ctx is done.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Notice)) error {
	sub := s.client.Subscribe(ctx, ChannelNotifications)
	defer sub.Close()

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var notice Notice
			if err := json.Unmarshal([]byte(msg.Payload), &notice); err != nil {
				continue // skip unparseable payloads
			}

			handler(&notice)
		}
	}
}
