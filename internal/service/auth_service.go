package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/middleware"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// AuthServiceConfig contains configuration for auth service
type AuthServiceConfig struct {
	JWT        middleware.JWTConfig
	BcryptCost int
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	config   *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, config *AuthServiceConfig) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.JWT.TTL == 0 {
		config.JWT.TTL = 24 * time.Hour
	}
	return &authService{userRepo: userRepo, config: config}
}

// Register creates a standard user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUserData, msg)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        domain.NormalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleStandard,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Login authenticates a user and issues an access token
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !user.IsActive {
		span.SetStatus(codes.Error, "user inactive")
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := middleware.IssueToken(s.config.JWT, user.ID, user.Email, string(user.Role))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.LoginResponse{
		Token:     token,
		Role:      string(user.Role),
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}, nil
}
