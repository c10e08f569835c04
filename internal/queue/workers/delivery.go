package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/myusa/platform/internal/models"
	"github.com/myusa/platform/internal/notification"
	"github.com/myusa/platform/internal/queue"
)

// DeliveryWorker performs channel sends out of band. It re-fetches the
// notification by id, so a task that outlives the creating request still
// delivers, and repeat runs of the same task only add delivery records.
type DeliveryWorker struct {
	store notification.Store
}

func NewDeliveryWorker(store notification.Store) *DeliveryWorker {
	return &DeliveryWorker{store: store}
}

func (w *DeliveryWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.NotificationDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	id, err := uuid.Parse(payload.NotificationID)
	if err != nil {
		return fmt.Errorf("parse notification id: %w", err)
	}

	n, err := w.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			// The user may have been deleted since enqueue; nothing to send.
			slog.Warn("notification gone before delivery", "notification_id", id, "channel", payload.Channel)
			return nil
		}
		return fmt.Errorf("fetch notification: %w", err)
	}

	if err := w.send(ctx, n, payload.Channel); err != nil {
		w.record(ctx, id, payload.Channel, err)
		return fmt.Errorf("deliver %s: %w", payload.Channel, err)
	}

	w.record(ctx, id, payload.Channel, nil)
	slog.Info("notification delivered", "notification_id", id, "channel", payload.Channel, "subject", n.Subject)
	return nil
}

// send hands the message to the channel's transport. SMTP and push
// gateways live outside this fragment; the handoff point is here.
func (w *DeliveryWorker) send(ctx context.Context, n *models.Notification, channel string) error {
	switch channel {
	case "email", "push":
		return nil
	default:
		return fmt.Errorf("no transport for channel %q", channel)
	}
}

func (w *DeliveryWorker) record(ctx context.Context, id uuid.UUID, channel string, sendErr error) {
	d := &models.NotificationDelivery{NotificationID: id, Channel: channel}
	if sendErr == nil {
		now := time.Now()
		d.DeliveredAt = &now
	} else {
		d.Error = sendErr.Error()
	}
	if err := w.store.RecordDelivery(ctx, d); err != nil {
		slog.Error("failed to record notification delivery", "error", err, "notification_id", id)
	}
}
