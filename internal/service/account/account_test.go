package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/service/plan"
)

type fakeUsers struct {
	users    map[string]*models.User
	upserted *models.GoogleProfile
}

func (f *fakeUsers) UpsertGoogle(ctx context.Context, p *models.GoogleProfile) (*models.User, error) {
	f.upserted = p
	u := &models.User{ID: "u-" + p.GoogleID, GoogleID: p.GoogleID, Email: p.Email, Name: p.Name, Plan: models.PlanFree}
	f.users[u.ID] = u
	return u, nil
}
func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
func (f *fakeUsers) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return f.GetByID(ctx, id)
}
func (f *fakeUsers) UpdateTheme(ctx context.Context, id string, theme models.Theme) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Theme = theme
	return u, nil
}
func (f *fakeUsers) UpdatePlan(ctx context.Context, id string, p models.Plan, expiry *time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Plan = p
	u.PlanExpiry = expiry
	return nil
}
func (f *fakeUsers) List(ctx context.Context) ([]models.UserSummary, error) { return nil, nil }

func newTestService(users *fakeUsers) *accountService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(users, plan.NewService(users, time.UTC, logger), logger).(*accountService)
}

func TestSignIn(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{}}
	svc := newTestService(users)

	user, err := svc.SignIn(context.Background(), &models.GoogleProfile{GoogleID: "g1", Email: "  Dev@Example.COM "})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user.Email != "dev@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Name != "dev" {
		t.Errorf("name = %q, want local part of email", user.Name)
	}
}

func TestSignIn_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		profile models.GoogleProfile
	}{
		{"missing google id", models.GoogleProfile{Email: "a@b.co"}},
		{"missing email", models.GoogleProfile{GoogleID: "g1"}},
		{"bad email", models.GoogleProfile{GoogleID: "g1", Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{users: map[string]*models.User{}}
			svc := newTestService(users)
			_, err := svc.SignIn(context.Background(), &tt.profile)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
			if users.upserted != nil {
				t.Error("invalid profile reached the repository")
			}
		})
	}
}

func TestGetUser_DowngradesExpiredPlan(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	users := &fakeUsers{users: map[string]*models.User{
		"u1": {ID: "u1", Plan: models.PlanMonthly, PlanExpiry: &past},
	}}
	svc := newTestService(users)

	user, err := svc.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Plan != models.PlanFree || user.PlanExpiry != nil {
		t.Errorf("plan = %s expiry = %v, want FREE with no expiry", user.Plan, user.PlanExpiry)
	}
	if users.users["u1"].Plan != models.PlanFree {
		t.Error("downgrade was not persisted")
	}
}

func TestUpdateTheme(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{"u1": {ID: "u1", Theme: models.ThemeDark}}}
	svc := newTestService(users)

	tests := []struct {
		theme   string
		wantErr bool
	}{
		{"light", false},
		{"dark", false},
		{"", true},
		{"purple", true},
	}

	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			user, err := svc.UpdateTheme(context.Background(), "u1", tt.theme)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil || string(user.Theme) != tt.theme {
				t.Errorf("UpdateTheme = %v, %v", user, err)
			}
		})
	}
}
