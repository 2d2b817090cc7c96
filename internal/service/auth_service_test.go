package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
)

func newAuthFixture() (AuthService, *MockUserRepository, middleware.JWTConfig) {
	jwtCfg := middleware.JWTConfig{Secret: "test-secret-key", Issuer: "event-ticketing", TTL: time.Hour}
	repo := NewMockUserRepository()
	return NewAuthService(repo, &AuthServiceConfig{JWT: jwtCfg, BcryptCost: bcrypt.MinCost}), repo, jwtCfg
}

func TestAuthService_Register(t *testing.T) {
	svc, repo, _ := newAuthFixture()
	req := &dto.RegisterRequest{FirstName: " Ana ", LastName: "Gómez", Email: "Ana@Example.com ", Password: "Password1!"}

	t.Run("successful registration", func(t *testing.T) {
		user, err := svc.Register(context.Background(), req)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if user.Email != "ana@example.com" {
			t.Errorf("Email = %q, want normalized", user.Email)
		}
		if user.FirstName != "Ana" || user.Role != domain.RoleStandard || !user.IsActive {
			t.Errorf("user = %+v", user)
		}
		if user.PasswordHash == req.Password {
			t.Error("password stored in clear text")
		}
		if bcrypt.CompareHashAndPassword([]byte(repo.users[user.ID].PasswordHash), []byte(req.Password)) != nil {
			t.Error("stored hash does not match password")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), req)
		if !errors.Is(err, domain.ErrEmailAlreadyExists) {
			t.Errorf("Register() error = %v, want ErrEmailAlreadyExists", err)
		}
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := svc.Register(context.Background(), &dto.RegisterRequest{FirstName: "A", LastName: "B", Email: "x", Password: "Password1!"})
		if !errors.Is(err, domain.ErrInvalidUserData) {
			t.Errorf("Register() error = %v, want ErrInvalidUserData", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, repo, jwtCfg := newAuthFixture()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	repo.users[1] = &domain.User{ID: 1, Email: "admin@example.com", PasswordHash: string(hashedPassword), Role: domain.RoleAdmin, IsActive: true}
	repo.users[2] = &domain.User{ID: 2, Email: "gone@example.com", PasswordHash: string(hashedPassword), Role: domain.RoleStandard}

	t.Run("successful login", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ADMIN@example.com", Password: "Password1!"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.Role != "admin" || resp.UserID != 1 {
			t.Errorf("Login() = %+v", resp)
		}

		claims, err := middleware.ParseToken(jwtCfg, resp.Token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if claims.UserID != 1 || claims.Role != "admin" {
			t.Errorf("claims = %+v", claims)
		}
		if !resp.ExpiresAt.After(time.Now()) {
			t.Errorf("ExpiresAt = %v", resp.ExpiresAt)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "admin@example.com", Password: "nope"})
		if err != domain.ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, domain.ErrInvalidCredentials)
		}
	})

	t.Run("non-existent user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "who@example.com", Password: "Password1!"})
		if err != domain.ErrInvalidCredentials {
			t.Errorf("Login() error = %v, want %v", err, domain.ErrInvalidCredentials)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "gone@example.com", Password: "Password1!"})
		if err != domain.ErrUserInactive {
			t.Errorf("Login() error = %v, want %v", err, domain.ErrUserInactive)
		}
	})
}
