package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// userService implements UserService
type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(ctx context.Context, includeInactive bool) ([]*domain.User, error) {
	return s.userRepo.List(ctx, includeInactive)
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser loads the account, applies the set fields and writes it back
func (s *userService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", id))

	if req == nil {
		return nil, fmt.Errorf("%w: empty request", domain.ErrInvalidUserData)
	}
	if valid, msg := req.Validate(); !valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUserData, msg)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	req.Apply(user)
	if err := s.userRepo.Update(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return user, nil
}

func (s *userService) DeactivateUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return fmt.Errorf("%w: cannot deactivate your own account", domain.ErrForbidden)
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	logger.Get().WithContext(ctx).Info("user deactivated",
		zap.Int64("user_id", id),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
