package account

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

var ErrUserNotFound = errors.New("user not found")

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) InsertUser(ctx context.Context, u *models.User) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (uid, email) VALUES ($1, $2)
		 RETURNING id, created_at`,
		u.UID, u.Email,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PGStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, uid, email, COALESCE(unconfirmed_email, ''), confirmed_at, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.UID, &u.Email, &u.UnconfirmedEmail, &u.ConfirmedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PGStore) ConfirmUser(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET confirmed_at = $2 WHERE id = $1`, id, at,
	)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	return nil
}

func (s *PGStore) SetUnconfirmedEmail(ctx context.Context, id uuid.UUID, email string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET unconfirmed_email = $2 WHERE id = $1`, id, email,
	)
	if err != nil {
		return fmt.Errorf("set unconfirmed email: %w", err)
	}
	return nil
}

func (s *PGStore) ApplyEmailChange(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET email = unconfirmed_email, unconfirmed_email = NULL
		 WHERE id = $1 AND unconfirmed_email IS NOT NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("apply email change: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	// Profile, notifications, tasks, authorizations, and activity rows go
	// with the user via ON DELETE CASCADE.
	_, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (s *PGStore) InsertProfile(ctx context.Context, p *models.Profile) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, first_name, last_name) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.UserID, p.FirstName, p.LastName,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PGStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, COALESCE(first_name, ''), COALESCE(last_name, ''), created_at
		 FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *PGStore) BetaSignupApproved(ctx context.Context, email string) (bool, error) {
	var approved bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM beta_signups WHERE email = $1 AND is_approved)`, email,
	).Scan(&approved)
	if err != nil {
		return false, fmt.Errorf("check beta signup: %w", err)
	}
	return approved, nil
}

func (s *PGStore) UpdateBetaSignupEmail(ctx context.Context, oldEmail, newEmail string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE beta_signups SET email = $2 WHERE email = $1 AND is_approved`, oldEmail, newEmail,
	)
	return err
}
