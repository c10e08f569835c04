package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	AppID       *uuid.UUID `json:"app_id,omitempty" db:"app_id"`
	Name        string     `json:"name" db:"name"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type TaskItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TaskID      uuid.UUID  `json:"task_id" db:"task_id"`
	Name        string     `json:"name" db:"name"`
	URL         string     `json:"url,omitempty" db:"url"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Completed reports whether the item has made its one-way transition out
// of the pending state.
func (i *TaskItem) Completed() bool {
	return i.CompletedAt != nil
}
