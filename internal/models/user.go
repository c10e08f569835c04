package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UID              string     `json:"uid" db:"uid"`
	Email            string     `json:"email" db:"email"`
	UnconfirmedEmail string     `json:"unconfirmed_email,omitempty" db:"unconfirmed_email"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Confirmed reports whether the account has completed email confirmation.
// Welcome and email-changed notifications are only produced for confirmed
// accounts.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name,omitempty" db:"first_name"`
	LastName  string    `json:"last_name,omitempty" db:"last_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type BetaSignup struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	IsApproved bool      `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
