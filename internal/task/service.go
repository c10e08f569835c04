package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
)

var ErrItemNotFound = errors.New("task item not found")

// Store persists tasks and their checklist items.
type Store interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.TaskItem, error)
	CompleteItem(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	CountUncompletedItems(ctx context.Context, taskID uuid.UUID) (int, error)
	CompleteTask(ctx context.Context, taskID uuid.UUID, at time.Time) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CompleteItem handles the update action: when completed is set, the item
// makes its one-way move out of pending, then the owning task is
// recomputed. An already-completed item keeps its original timestamp.
func (s *Service) CompleteItem(ctx context.Context, id uuid.UUID, completed bool) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if completed && !item.Completed() {
		if err := s.store.CompleteItem(ctx, id, s.now()); err != nil {
			return fmt.Errorf("complete task item: %w", err)
		}
	}

	return s.recompute(ctx, item.TaskID)
}

// DestroyItem removes the item and retriggers the same recomputation:
// deleting the last pending item completes the task.
func (s *Service) DestroyItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete task item: %w", err)
	}

	return s.recompute(ctx, item.TaskID)
}

// recompute marks the task complete once no pending items remain. A task
// that is already complete is left alone, and completed_at is never
// cleared when a pending item later reappears; reopening is documented
// as unhandled.
func (s *Service) recompute(ctx context.Context, taskID uuid.UUID) error {
	remaining, err := s.store.CountUncompletedItems(ctx, taskID)
	if err != nil {
		return fmt.Errorf("count uncompleted items: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if t.CompletedAt != nil {
		return nil
	}

	if err := s.store.CompleteTask(ctx, taskID, s.now()); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}
