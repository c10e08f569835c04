package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
	"github.com/myusa/platform/internal/notification"
)

// ── Fakes ──

type fakeStore struct {
	users       map[uuid.UUID]*models.User
	uids        map[string]bool
	profiles    map[uuid.UUID]*models.Profile
	betaSignups map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*models.User),
		uids:        make(map[string]bool),
		profiles:    make(map[uuid.UUID]*models.Profile),
		betaSignups: make(map[string]bool),
	}
}

func (f *fakeStore) InsertUser(_ context.Context, u *models.User) error {
	if f.uids[u.UID] {
		return errors.New("duplicate uid")
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	f.uids[u.UID] = true
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) ConfirmUser(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.ConfirmedAt = &at
	}
	return nil
}

func (f *fakeStore) SetUnconfirmedEmail(_ context.Context, id uuid.UUID, email string) error {
	if u, ok := f.users[id]; ok {
		u.UnconfirmedEmail = email
	}
	return nil
}

func (f *fakeStore) ApplyEmailChange(_ context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok && u.UnconfirmedEmail != "" {
		u.Email = u.UnconfirmedEmail
		u.UnconfirmedEmail = ""
	}
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	delete(f.profiles, id)
	return nil
}

func (f *fakeStore) InsertProfile(_ context.Context, p *models.Profile) error {
	p.ID = uuid.New()
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

func (f *fakeStore) BetaSignupApproved(_ context.Context, email string) (bool, error) {
	return f.betaSignups[email], nil
}

func (f *fakeStore) UpdateBetaSignupEmail(_ context.Context, oldEmail, newEmail string) error {
	if f.betaSignups[oldEmail] {
		delete(f.betaSignups, oldEmail)
		f.betaSignups[newEmail] = true
	}
	return nil
}

type fakeNotifier struct {
	created []notification.CreateRequest
}

func (f *fakeNotifier) Create(_ context.Context, req notification.CreateRequest) (*models.Notification, error) {
	f.created = append(f.created, req)
	return &models.Notification{ID: uuid.New(), UserID: req.UserID, Subject: req.Subject}, nil
}

type fakeActivity struct {
	logs []models.AppActivityLog
}

func (f *fakeActivity) ListByUser(_ context.Context, userID uuid.UUID) ([]models.AppActivityLog, error) {
	var out []models.AppActivityLog
	for _, l := range f.logs {
		if l.UserID != nil && *l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeMailer struct {
	deleted []string
}

func (f *fakeMailer) AccountDeleted(_ context.Context, email string) error {
	f.deleted = append(f.deleted, email)
	return nil
}

type testEnv struct {
	svc      *Service
	store    *fakeStore
	notifier *fakeNotifier
	activity *fakeActivity
	mailer   *fakeMailer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    newFakeStore(),
		notifier: &fakeNotifier{},
		activity: &fakeActivity{},
		mailer:   &fakeMailer{},
	}
	env.svc = NewService(env.store, env.notifier, env.activity, env.mailer)
	return env
}

func govRequest() CreateUserRequest {
	return CreateUserRequest{Email: "jane@agency.gov", TermsOfService: true}
}

// ── Tests ──

func TestCreateUserGeneratesDistinctUIDs(t *testing.T) {
	env := newTestEnv()

	a, err := env.svc.CreateUser(context.Background(), govRequest())
	if err != nil {
		t.Fatal(err)
	}
	req := govRequest()
	req.Email = "john@agency.gov"
	b, err := env.svc.CreateUser(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if a.UID == "" || b.UID == "" {
		t.Fatal("generated uid is empty")
	}
	if a.UID == b.UID {
		t.Fatalf("uids collide: %s", a.UID)
	}
}

func TestCreateUserKeepsExplicitUID(t *testing.T) {
	env := newTestEnv()
	req := govRequest()
	req.UID = "explicit-uid"

	u, err := env.svc.CreateUser(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if u.UID != "explicit-uid" {
		t.Errorf("uid = %q", u.UID)
	}
}

func TestCreateUserWhitelist(t *testing.T) {
	tests := []struct {
		email   string
		approve bool
		auto    bool
		wantErr error
	}{
		{"jane@agency.gov", false, false, nil},
		{"sgt@army.mil", false, false, nil},
		{"carrier@usps.com", false, false, nil},
		{"jane@example.com", false, false, ErrNotApproved},
		{"jane@example.com", true, false, nil},
		{"jane@example.com", false, true, nil},
	}

	for _, tt := range tests {
		env := newTestEnv()
		if tt.approve {
			env.store.betaSignups[tt.email] = true
		}
		req := CreateUserRequest{Email: tt.email, TermsOfService: true, AutoApprove: tt.auto}
		_, err := env.svc.CreateUser(context.Background(), req)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("email %s (approved=%v auto=%v): err = %v, want %v", tt.email, tt.approve, tt.auto, err, tt.wantErr)
		}
	}
}

func TestCreateUserPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  error
	}{
		{"", nil},
		{"Password1", nil},
		{"password1", ErrWeakPassword},
		{"PASSWORD1", ErrWeakPassword},
		{"Password", ErrWeakPassword},
	}

	for _, tt := range tests {
		env := newTestEnv()
		req := govRequest()
		req.Password = tt.password
		_, err := env.svc.CreateUser(context.Background(), req)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("password %q: err = %v, want %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestCreateUserRejectsBadEmailAndTerms(t *testing.T) {
	env := newTestEnv()

	req := govRequest()
	req.Email = "not-an-email"
	if _, err := env.svc.CreateUser(context.Background(), req); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email: err = %v", err)
	}

	req = govRequest()
	req.TermsOfService = false
	if _, err := env.svc.CreateUser(context.Background(), req); !errors.Is(err, ErrTermsNotAccepted) {
		t.Errorf("terms: err = %v", err)
	}
}

func TestCreateUserBuildsProfile(t *testing.T) {
	env := newTestEnv()
	req := govRequest()
	req.FirstName = "Jane"
	req.LastName = "Doe"

	u, err := env.svc.CreateUser(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	p, err := env.svc.GetProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.FirstName != "Jane" || p.LastName != "Doe" {
		t.Errorf("profile = %+v", p)
	}
}

func TestConfirmCreatesWelcomeNotification(t *testing.T) {
	env := newTestEnv()
	u, err := env.svc.CreateUser(context.Background(), govRequest())
	if err != nil {
		t.Fatal(err)
	}
	if len(env.notifier.created) != 0 {
		t.Fatal("notification produced before confirmation")
	}

	if err := env.svc.Confirm(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}
	if len(env.notifier.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(env.notifier.created))
	}
	if env.notifier.created[0].Subject != "Welcome to MyUSA" {
		t.Errorf("subject = %q", env.notifier.created[0].Subject)
	}
}

func TestReconfirmationAppliesEmailChange(t *testing.T) {
	env := newTestEnv()
	env.store.betaSignups["jane@example.com"] = true
	req := CreateUserRequest{Email: "jane@example.com", TermsOfService: true}

	u, err := env.svc.CreateUser(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Confirm(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}

	if err := env.svc.ChangeEmail(context.Background(), u.ID, "jane@newjob.gov"); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Confirm(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}

	if u.Email != "jane@newjob.gov" || u.UnconfirmedEmail != "" {
		t.Errorf("email change not applied: %+v", u)
	}
	if last := env.notifier.created[len(env.notifier.created)-1]; last.Subject != "You changed your email address" {
		t.Errorf("subject = %q", last.Subject)
	}
	if !env.store.betaSignups["jane@newjob.gov"] {
		t.Error("beta signup not synced to new email")
	}
}

func TestDeleteUserHandsOffFarewellMail(t *testing.T) {
	env := newTestEnv()
	u, err := env.svc.CreateUser(context.Background(), govRequest())
	if err != nil {
		t.Fatal(err)
	}

	if err := env.svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.GetUser(context.Background(), u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Error("user still present after delete")
	}
	if len(env.mailer.deleted) != 1 || env.mailer.deleted[0] != "jane@agency.gov" {
		t.Errorf("farewell mail = %v", env.mailer.deleted)
	}
}

func TestGroupedActivityLogs(t *testing.T) {
	env := newTestEnv()
	u, err := env.svc.CreateUser(context.Background(), govRequest())
	if err != nil {
		t.Fatal(err)
	}

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	env.activity.logs = []models.AppActivityLog{
		{UserID: &u.ID, Controller: "profile", Action: "show", CreatedAt: day1},
		{UserID: &u.ID, Controller: "profile", Action: "show", CreatedAt: day1.Add(2 * time.Hour)},
		{UserID: &u.ID, Controller: "notifications", Action: "index", CreatedAt: day2},
	}

	grouped, err := env.svc.GroupedActivityLogs(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped["March 1"]) != 2 || len(grouped["March 2"]) != 1 {
		t.Errorf("grouped = %v", grouped)
	}
}
