package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
)

// ErrUnresolvedChannel marks a notification setting naming a delivery
// type with no registered channel. A configuration-integrity failure:
// reported, never fatal to the notification itself.
var ErrUnresolvedChannel = errors.New("unresolved delivery channel")

// Channel delivers one notification over one mechanism. Implementations
// receive only the id and re-fetch the record; delivery is at-least-once,
// so Perform must be idempotent for a given id.
type Channel interface {
	Perform(ctx context.Context, notificationID uuid.UUID) error
}

// Registry maps delivery types to channels. Unknown types are rejected up
// front at registration instead of surfacing at dispatch time.
type Registry struct {
	channels map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

func (r *Registry) Register(deliveryType string, ch Channel) error {
	if deliveryType == "" {
		return errors.New("empty delivery type")
	}
	if _, ok := r.channels[deliveryType]; ok {
		return fmt.Errorf("delivery type %q already registered", deliveryType)
	}
	r.channels[deliveryType] = ch
	return nil
}

func (r *Registry) Resolve(deliveryType string) (Channel, error) {
	ch, ok := r.channels[deliveryType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedChannel, deliveryType)
	}
	return ch, nil
}

// SettingSource reads the delivery settings driving the fan-out.
type SettingSource interface {
	ListSettings(ctx context.Context, userID uuid.UUID, notificationType string) ([]models.NotificationSetting, error)
}

// Dispatcher fans a created notification out to every channel the user
// enabled for its type. One setting, one invocation.
type Dispatcher struct {
	settings SettingSource
	registry *Registry
}

func NewDispatcher(settings SettingSource, registry *Registry) *Dispatcher {
	return &Dispatcher{settings: settings, registry: registry}
}

// Dispatch runs after the notification row is durably created. Channel
// failures are isolated per setting: each is logged and collected, and a
// broken channel never blocks its siblings. The returned error is the
// join of per-channel failures; callers report it and move on, the
// notification row stands regardless.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) error {
	settings, err := d.settings.ListSettings(ctx, n.UserID, n.NotificationType)
	if err != nil {
		return fmt.Errorf("list notification settings: %w", err)
	}

	var errs []error
	for _, setting := range settings {
		ch, err := d.registry.Resolve(setting.DeliveryType)
		if err != nil {
			slog.Error("notification channel unresolved",
				"delivery_type", setting.DeliveryType,
				"notification_id", n.ID,
				"user_id", n.UserID)
			errs = append(errs, err)
			continue
		}
		if err := ch.Perform(ctx, n.ID); err != nil {
			slog.Error("notification channel failed",
				"delivery_type", setting.DeliveryType,
				"notification_id", n.ID,
				"error", err)
			errs = append(errs, fmt.Errorf("channel %s: %w", setting.DeliveryType, err))
		}
	}
	return errors.Join(errs...)
}
