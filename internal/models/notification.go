package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	AppID            *uuid.UUID `json:"app_id,omitempty" db:"app_id"`
	Subject          string     `json:"subject" db:"subject"`
	Body             string     `json:"body,omitempty" db:"body"`
	NotificationType string     `json:"notification_type" db:"notification_type"`
	ReceivedAt       time.Time  `json:"received_at" db:"received_at"`
	ViewedAt         *time.Time `json:"viewed_at,omitempty" db:"viewed_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// NotificationSetting names one delivery channel a user has enabled for a
// notification type. A user may hold several settings for the same type;
// each produces an independent delivery.
type NotificationSetting struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	NotificationType string    `json:"notification_type" db:"notification_type"`
	DeliveryType     string    `json:"delivery_type" db:"delivery_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// NotificationDelivery records one channel-level delivery attempt made by
// the worker. Written once per attempt, never updated.
type NotificationDelivery struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	NotificationID uuid.UUID  `json:"notification_id" db:"notification_id"`
	Channel        string     `json:"channel" db:"channel"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	Error          string     `json:"error,omitempty" db:"error"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
