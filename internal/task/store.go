package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myusa/platform/internal/models"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) GetItem(ctx context.Context, id uuid.UUID) (*models.TaskItem, error) {
	var item models.TaskItem
	err := s.db.QueryRow(ctx,
		`SELECT id, task_id, name, COALESCE(url, ''), completed_at, created_at
		 FROM task_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.TaskID, &item.Name, &item.URL, &item.CompletedAt, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get task item: %w", err)
	}
	return &item, nil
}

func (s *PGStore) CompleteItem(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE task_items SET completed_at = $2 WHERE id = $1 AND completed_at IS NULL`, id, at,
	)
	return err
}

func (s *PGStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM task_items WHERE id = $1`, id)
	return err
}

func (s *PGStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, app_id, name, completed_at, created_at
		 FROM tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.AppID, &t.Name, &t.CompletedAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func (s *PGStore) CountUncompletedItems(ctx context.Context, taskID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_items WHERE task_id = $1 AND completed_at IS NULL`, taskID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count uncompleted items: %w", err)
	}
	return count, nil
}

func (s *PGStore) CompleteTask(ctx context.Context, taskID uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE tasks SET completed_at = $2 WHERE id = $1 AND completed_at IS NULL`, taskID, at,
	)
	return err
}
