package models

import (
	"time"

	"github.com/google/uuid"
)

// App is a registered client application. It owns zero or more
// authorizations granted by end users.
type App struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Sandbox   bool      `json:"sandbox" db:"sandbox"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Authorization binds an App to a resource-owning User together with the
// scope string the user granted. Scope is a space-separated set of scope
// names, e.g. "profile.read notifications".
type Authorization struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AppID     uuid.UUID `json:"app_id" db:"app_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Scope     string    `json:"scope" db:"scope"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AccessToken is an opaque bearer token issued against an Authorization.
// Issuance belongs to the OAuth2 provider subsystem; this service only
// reads tokens back for validation.
type AccessToken struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	AuthorizationID uuid.UUID  `json:"authorization_id" db:"authorization_id"`
	TokenHash       string     `json:"-" db:"token_hash"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
