package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myusa/platform/internal/models"
)

var ErrNotFound = errors.New("notification not found")

// PGStore is the Postgres-backed Store.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, n *models.Notification) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, app_id, subject, body, notification_type, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		n.UserID, n.AppID, n.Subject, n.Body, n.NotificationType, n.ReceivedAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, app_id, subject, body, notification_type, received_at, viewed_at, deleted_at, created_at
		 FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &n.UserID, &n.AppID, &n.Subject, &n.Body, &n.NotificationType, &n.ReceivedAt, &n.ViewedAt, &n.DeletedAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnviewed bool) ([]models.Notification, error) {
	query := `SELECT id, user_id, app_id, subject, body, notification_type, received_at, viewed_at, deleted_at, created_at
	          FROM notifications WHERE user_id = $1`
	if onlyUnviewed {
		query += " AND viewed_at IS NULL AND deleted_at IS NULL"
	}
	query += " ORDER BY received_at DESC, id DESC"

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.AppID, &n.Subject, &n.Body, &n.NotificationType, &n.ReceivedAt, &n.ViewedAt, &n.DeletedAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *PGStore) MarkViewed(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET viewed_at = now()
		 WHERE id = $1 AND user_id = $2 AND viewed_at IS NULL`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark notification viewed: %w", err)
	}
	return nil
}

func (s *PGStore) SoftDelete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notifications SET deleted_at = now()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *PGStore) ListSettings(ctx context.Context, userID uuid.UUID, notificationType string) ([]models.NotificationSetting, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, notification_type, delivery_type, created_at
		 FROM notification_settings WHERE user_id = $1 AND notification_type = $2`,
		userID, notificationType,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification settings: %w", err)
	}
	defer rows.Close()

	var settings []models.NotificationSetting
	for rows.Next() {
		var ns models.NotificationSetting
		if err := rows.Scan(&ns.ID, &ns.UserID, &ns.NotificationType, &ns.DeliveryType, &ns.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification setting: %w", err)
		}
		settings = append(settings, ns)
	}
	return settings, nil
}

func (s *PGStore) RecordDelivery(ctx context.Context, d *models.NotificationDelivery) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO notification_deliveries (notification_id, channel, delivered_at, error)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		d.NotificationID, d.Channel, d.DeliveredAt, d.Error,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("record notification delivery: %w", err)
	}
	return nil
}
