package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/queue"
)

// DeliveryEnqueuer hands a channel send to the task queue. Satisfied by
// *queue.Client.
type DeliveryEnqueuer interface {
	EnqueueNotificationDeliver(payload queue.NotificationDeliverPayload) error
}

// QueueChannel is a delivery channel backed by the asynq queue: Perform
// enqueues a delivery task carrying the notification id, and the worker
// re-fetches the record when it runs. Safe under at-least-once delivery
// since the worker keys its work off the id alone.
type QueueChannel struct {
	name     string
	enqueuer DeliveryEnqueuer
}

func NewEmailChannel(enqueuer DeliveryEnqueuer) *QueueChannel {
	return &QueueChannel{name: "email", enqueuer: enqueuer}
}

func NewPushChannel(enqueuer DeliveryEnqueuer) *QueueChannel {
	return &QueueChannel{name: "push", enqueuer: enqueuer}
}

func (c *QueueChannel) Perform(ctx context.Context, notificationID uuid.UUID) error {
	err := c.enqueuer.EnqueueNotificationDeliver(queue.NotificationDeliverPayload{
		NotificationID: notificationID.String(),
		Channel:        c.name,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s delivery: %w", c.name, err)
	}
	return nil
}

// DefaultRegistry wires the channels the platform ships with. Unknown
// delivery types in notification_settings stay unresolvable and are
// reported at dispatch.
func DefaultRegistry(enqueuer DeliveryEnqueuer) (*Registry, error) {
	r := NewRegistry()
	if err := r.Register("email", NewEmailChannel(enqueuer)); err != nil {
		return nil, err
	}
	if err := r.Register("push", NewPushChannel(enqueuer)); err != nil {
		return nil, err
	}
	return r, nil
}
