package models

import (
	"time"

	"github.com/google/uuid"
)

// AppActivityLog is one immutable audit row, written exactly once per API
// call that reached the guarded filter chain. AppID and UserID are null
// when token resolution failed outright.
type AppActivityLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	AppID      *uuid.UUID `json:"app_id,omitempty" db:"app_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Controller string     `json:"controller" db:"controller"`
	Action     string     `json:"action" db:"action"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
