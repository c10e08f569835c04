package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/activity"
	"github.com/myusa/platform/internal/models"
	"github.com/myusa/platform/internal/notification"
)

// WhitelistedDomains are the email suffixes admitted without a prior
// beta-signup approval.
var WhitelistedDomains = []string{".gov", ".mil", "usps.com"}

var (
	ErrNotApproved      = errors.New("I'm sorry, your account hasn't been approved yet.")
	ErrWeakPassword     = errors.New("password must include at least one lower case letter, one upper case letter and one digit.")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrTermsNotAccepted = errors.New("terms of service must be accepted")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	accountNotificationType = "account"

	welcomeSubject = "Welcome to MyUSA"
	welcomeBody    = "<p>Welcome to MyUSA. Your account is ready.</p>"

	emailChangedSubject = "You changed your email address"
	emailChangedBody    = "<p>Your MyUSA email address was changed. If this wasn't you, contact support.</p>"
)

// Store persists users, profiles, and beta signups. Deleting a user
// cascades to profile, notifications, tasks, authorizations, and activity
// rows at the schema level.
type Store interface {
	InsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ConfirmUser(ctx context.Context, id uuid.UUID, at time.Time) error
	SetUnconfirmedEmail(ctx context.Context, id uuid.UUID, email string) error
	ApplyEmailChange(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	InsertProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	BetaSignupApproved(ctx context.Context, email string) (bool, error)
	UpdateBetaSignupEmail(ctx context.Context, oldEmail, newEmail string) error
}

// Notifier creates user notifications; satisfied by
// *notification.Service.
type Notifier interface {
	Create(ctx context.Context, req notification.CreateRequest) (*models.Notification, error)
}

// ActivitySource reads a user's audit rows; satisfied by
// *activity.Service.
type ActivitySource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AppActivityLog, error)
}

// Mailer is the handoff point for account mail that cannot ride the
// notification table, e.g. the farewell sent after the row is gone.
// Delivery mechanics live outside this fragment.
type Mailer interface {
	AccountDeleted(ctx context.Context, email string) error
}

type Service struct {
	store    Store
	notifier Notifier
	activity ActivitySource
	mailer   Mailer
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, activity ActivitySource, mailer Mailer) *Service {
	return &Service{store: store, notifier: notifier, activity: activity, mailer: mailer, now: time.Now}
}

type CreateUserRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	UID            string `json:"uid,omitempty"`
	TermsOfService bool   `json:"terms_of_service"`
	AutoApprove    bool   `json:"-"`
}

// CreateUser registers an account. The uid is generated when absent and
// is unique by constraint; the 1:1 profile is created alongside. The
// welcome notification waits for confirmation.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if req.Email != "" && !emailRe.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}
	if !req.TermsOfService {
		return nil, ErrTermsNotAccepted
	}
	if req.Password != "" && !passwordStrong(req.Password) {
		return nil, ErrWeakPassword
	}

	if req.Email != "" && !req.AutoApprove && !EmailWhitelisted(req.Email) {
		approved, err := s.store.BetaSignupApproved(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check beta signup: %w", err)
		}
		if !approved {
			return nil, ErrNotApproved
		}
	}

	u := &models.User{UID: req.UID, Email: req.Email}
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}

	profile := &models.Profile{UserID: u.ID, FirstName: req.FirstName, LastName: req.LastName}
	if err := s.store.InsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return u, nil
}

// Confirm completes email confirmation. First confirmation produces the
// welcome notification; a reconfirmation (pending email change) applies
// the new address, keeps any approved beta signup in sync, and produces
// the email-changed notification instead.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if u.UnconfirmedEmail != "" {
		if approved, err := s.store.BetaSignupApproved(ctx, u.Email); err == nil && approved {
			if err := s.store.UpdateBetaSignupEmail(ctx, u.Email, u.UnconfirmedEmail); err != nil {
				slog.Warn("beta signup sync failed", "error", err, "user_id", userID)
			}
		}
		if err := s.store.ApplyEmailChange(ctx, userID); err != nil {
			return fmt.Errorf("apply email change: %w", err)
		}
		if err := s.store.ConfirmUser(ctx, userID, s.now()); err != nil {
			return err
		}
		return s.createAccountNotification(ctx, userID, emailChangedSubject, emailChangedBody)
	}

	if err := s.store.ConfirmUser(ctx, userID, s.now()); err != nil {
		return err
	}
	return s.createAccountNotification(ctx, userID, welcomeSubject, welcomeBody)
}

// ChangeEmail stages a new address; it takes effect on reconfirmation.
func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	if !emailRe.MatchString(newEmail) {
		return ErrInvalidEmail
	}
	return s.store.SetUnconfirmedEmail(ctx, userID, newEmail)
}

// DeleteUser removes the account and everything hanging off it, then
// hands the farewell mail to the mailer.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.mailer.AccountDeleted(ctx, u.Email); err != nil {
		slog.Error("account deleted mail failed", "error", err, "email", u.Email)
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// GroupedActivityLogs buckets the user's audit trail by day for the
// account activity page.
func (s *Service) GroupedActivityLogs(ctx context.Context, userID uuid.UUID) (map[string][]models.AppActivityLog, error) {
	logs, err := s.activity.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return activity.GroupedByDate(logs), nil
}

func (s *Service) createAccountNotification(ctx context.Context, userID uuid.UUID, subject, body string) error {
	_, err := s.notifier.Create(ctx, notification.CreateRequest{
		UserID:           userID,
		Subject:          subject,
		Body:             body,
		NotificationType: accountNotificationType,
		ReceivedAt:       s.now(),
	})
	return err
}

// EmailWhitelisted reports whether the address may register without
// prior approval.
func EmailWhitelisted(email string) bool {
	for _, d := range WhitelistedDomains {
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

func passwordStrong(password string) bool {
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
