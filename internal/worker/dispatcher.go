package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/internal/model"
	"github.com/biznet/bn_server/internal/pkg/pubsub"
	"github.com/biznet/bn_server/internal/pkg/queue"
	"github.com/biznet/bn_server/internal/repository"
)

// Dispatcher consumes membership events, stores a notification row and
// fans the notice out to live subscribers. Keeping delivery out of the
// lifecycle path means a slow or failing notification can never fail a
// purchase.
type Dispatcher struct {
	events           *queue.Queue
	notificationRepo *repository.NotificationRepository
	publisher        *pubsub.Publisher
}

func NewDispatcher(
	events *queue.Queue,
	notificationRepo *repository.NotificationRepository,
	publisher *pubsub.Publisher,
) *Dispatcher {
	return &Dispatcher{
		events:           events,
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Run consumes events until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	log.Info().Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := d.events.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("failed to pop membership event")
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		if err := d.Handle(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("event", msg.Event).
				Int64("user_id", msg.UserID).
				Msg("failed to dispatch membership event")
		}
	}
}

// Handle materialises one event as a notification and publishes it.
func (d *Dispatcher) Handle(ctx context.Context, msg *queue.EventMessage) error {
	notification := &model.Notification{
		UserID:       msg.UserID,
		Type:         msg.Event,
		Message:      messageFor(msg),
		MembershipID: msg.MembershipID,
	}

	if err := d.notificationRepo.Create(notification); err != nil {
		return err
	}

	// Fan-out is best-effort; the stored row is the durable copy.
	if d.publisher != nil {
		notice := &pubsub.Notice{
			UserID:         msg.UserID,
			NotificationID: notification.ID,
			Event:          msg.Event,
			Message:        notification.Message,
			MembershipID:   msg.MembershipID,
			CreatedAt:      notification.CreatedAt,
		}
		if err := d.publisher.Publish(ctx, notice); err != nil {
			log.Error().Err(err).
				Int64("notification_id", notification.ID).
				Msg("failed to publish notice")
		}
	}

	return nil
}

func messageFor(msg *queue.EventMessage) string {
	switch msg.Event {
	case queue.EventPurchased:
		return fmt.Sprintf("Your %s membership is active.", msg.Tier)
	case queue.EventDeactivated:
		return fmt.Sprintf("Your %s membership was deactivated for an upgrade.", msg.Tier)
	case queue.EventDowngraded:
		if msg.PreviousTier != "" {
			return fmt.Sprintf("Your membership was downgraded from %s to %s.", msg.PreviousTier, msg.Tier)
		}
		return fmt.Sprintf("Your membership was downgraded to %s.", msg.Tier)
	case queue.EventCancelled:
		return fmt.Sprintf("Your %s membership was cancelled.", msg.Tier)
	case queue.EventExpired:
		return fmt.Sprintf("Your %s membership has expired.", msg.Tier)
	default:
		return fmt.Sprintf("Membership update: %s.", msg.Event)
	}
}
