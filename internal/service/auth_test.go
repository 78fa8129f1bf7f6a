package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	users := newFakeUserRepo()
	// Minimum bcrypt cost keeps the test fast.
	svc := NewAuthService(users, tokens, auth.NewPasswordService(4), discardLogger())
	return svc, users
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "sakif",
		Email:    "Sakif@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.User.Email != "sakif@example.com" {
		t.Errorf("Email = %q, want lowercased", result.User.Email)
	}
	if result.User.PasswordHash == "password123" {
		t.Error("password stored in the clear")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.com", Password: "password123"}},
		{"missing email", RegisterInput{Username: "a", Password: "password123"}},
		{"invalid email", RegisterInput{Username: "a", Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterInput{Username: "a", Email: "a@b.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	in := RegisterInput{Username: "sakif", Email: "sakif@example.com", Password: "password123"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	in.Username = "someone else"
	if _, err := svc.Register(ctx, in); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Register error = %v, want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Username: "sakif", Email: "sakif@example.com", Password: "password123",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	result, err := svc.Login(ctx, "SAKIF@example.com", "password123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}

	// Unknown email and wrong password both come back as the same
	// Unauthorized, so an attacker cannot enumerate accounts.
	if _, err := svc.Login(ctx, "sakif@example.com", "wrong-password"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("wrong password Login error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("unknown email Login error = %v, want ErrUnauthorized", err)
	}
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID: 12345, Login: "octocat", Email: "octo@example.com",
	})
	if err != nil {
		t.Fatalf("first GitHub login error: %v", err)
	}
	if first.Token == "" {
		t.Error("expected a token")
	}

	// Second login with a changed profile updates the same account.
	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID: 12345, Login: "octocat-renamed", Email: "octo@example.com",
	})
	if err != nil {
		t.Fatalf("second GitHub login error: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second login created new user %d, want %d", second.User.ID, first.User.ID)
	}
	if len(users.users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users.users))
	}
}

func TestLoginOrRegisterGitHubNoEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID: 99, Login: "private-person",
	})
	if err != nil {
		t.Fatalf("GitHub login error: %v", err)
	}
	if result.User.Email == "" {
		t.Error("expected a synthesized placeholder email")
	}
}

func TestGetUserByID(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "sakif", Email: "sakif@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	user, err := svc.GetUserByID(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if user.Username != "sakif" {
		t.Errorf("Username = %q, want sakif", user.Username)
	}
	if _, err := svc.GetUserByID(ctx, 999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}
