package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myusa/platform/internal/models"
)

// Store persists and reads activity rows. Rows are insert-only.
type Store interface {
	Insert(ctx context.Context, entry *models.AppActivityLog) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AppActivityLog, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record writes exactly one audit row for an API call. App and user may
// both be nil when token resolution failed. Errors propagate to the
// caller; audit completeness is a correctness requirement, not
// best-effort.
func (s *Service) Record(ctx context.Context, app *models.App, user *models.User, controller, action string) error {
	entry := &models.AppActivityLog{Controller: controller, Action: action}
	if app != nil {
		entry.AppID = &app.ID
	}
	if user != nil {
		entry.UserID = &user.ID
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return fmt.Errorf("record activity %s#%s: %w", controller, action, err)
	}
	return nil
}

// ListByUser returns a user's audit rows, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AppActivityLog, error) {
	return s.store.ListByUser(ctx, userID)
}

// GroupedByDate buckets logs under a "January 2" style day key, the shape
// the account activity page renders.
func GroupedByDate(logs []models.AppActivityLog) map[string][]models.AppActivityLog {
	grouped := make(map[string][]models.AppActivityLog)
	for _, log := range logs {
		key := log.CreatedAt.Format("January 2")
		grouped[key] = append(grouped[key], log)
	}
	return grouped
}

// PGStore is the Postgres-backed Store.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, entry *models.AppActivityLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO app_activity_logs (app_id, user_id, controller, action)
		 VALUES ($1, $2, $3, $4)`,
		entry.AppID, entry.UserID, entry.Controller, entry.Action,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AppActivityLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, app_id, user_id, controller, action, created_at
		 FROM app_activity_logs WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AppActivityLog
	for rows.Next() {
		var l models.AppActivityLog
		if err := rows.Scan(&l.ID, &l.AppID, &l.UserID, &l.Controller, &l.Action, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
