package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
)

// Store persists notifications, their settings, and worker-side delivery
// records.
type Store interface {
	SettingSource
	Insert(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, onlyUnviewed bool) ([]models.Notification, error)
	MarkViewed(ctx context.Context, id, userID uuid.UUID) error
	SoftDelete(ctx context.Context, id, userID uuid.UUID) error
	RecordDelivery(ctx context.Context, d *models.NotificationDelivery) error
}

type Service struct {
	store      Store
	dispatcher *Dispatcher
}

func NewService(store Store, dispatcher *Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

type CreateRequest struct {
	UserID           uuid.UUID  `json:"user_id"`
	AppID            *uuid.UUID `json:"app_id,omitempty"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body,omitempty"`
	NotificationType string     `json:"notification_type"`
	ReceivedAt       time.Time  `json:"received_at"`
}

func (r *CreateRequest) validate() error {
	switch {
	case r.UserID == uuid.Nil:
		return errors.New("user_id is required")
	case r.Subject == "":
		return errors.New("subject is required")
	case r.NotificationType == "":
		return errors.New("notification_type is required")
	case r.ReceivedAt.IsZero():
		return errors.New("received_at is required")
	}
	return nil
}

// Create persists the notification and immediately fans it out. Dispatch
// failures are reported via the log only; the created row is never rolled
// back and the dispatcher never mutates it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Notification, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	n := &models.Notification{
		UserID:           req.UserID,
		AppID:            req.AppID,
		Subject:          req.Subject,
		Body:             req.Body,
		NotificationType: req.NotificationType,
		ReceivedAt:       req.ReceivedAt,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		slog.Error("notification dispatch incomplete", "notification_id", n.ID, "error", err)
	}

	return n, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.store.Get(ctx, id)
}

// ListByUser returns a user's notifications newest first (received_at
// DESC, id DESC). With onlyUnviewed set, rows already viewed or
// soft-deleted are excluded.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnviewed bool) ([]models.Notification, error) {
	return s.store.ListByUser(ctx, userID, onlyUnviewed)
}

func (s *Service) MarkViewed(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.MarkViewed(ctx, id, userID)
}

func (s *Service) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.SoftDelete(ctx, id, userID)
}
