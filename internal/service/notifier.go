package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/pkg/queue"
)

// Notifier pushes membership lifecycle events onto the Redis queue for the
// dispatcher worker. Strictly fire-and-forget: failures are logged and
// never surface to the lifecycle operation that triggered them.
type Notifier struct {
	events *queue.Queue
}

func NewNotifier(events *queue.Queue) *Notifier {
	return &Notifier{events: events}
}

// Emit enqueues one event for the membership. A nil queue (tests, degraded
// startup) drops events silently.
func (n *Notifier) Emit(event string, userID int64, m *model.Membership) {
	if n == nil || n.events == nil {
		return
	}

	msg := &queue.EventMessage{
		Event:      event,
		UserID:     userID,
		OccurredAt: time.Now(),
	}
	if m != nil {
		msg.MembershipID = m.MembershipID
		msg.Tier = m.Tier
		msg.Amount = m.Amount
		if m.PreviousTier != nil {
			msg.PreviousTier = *m.PreviousTier
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := n.events.Push(ctx, msg); err != nil {
		log.Error().Err(err).
			Str("event", event).
			Int64("user_id", userID).
			Msg("failed to enqueue membership event")
	}
}
