package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// seatService implements SeatService
type seatService struct {
	seatRepo     repository.SeatRepository
	availability AvailabilityCache
}

// NewSeatService creates a new SeatService
func NewSeatService(seatRepo repository.SeatRepository, availability AvailabilityCache) SeatService {
	return &seatService{seatRepo: seatRepo, availability: availability}
}

// UpdateStatus applies a manual hold or release
func (s *seatService) UpdateStatus(ctx context.Context, req *dto.UpdateSeatStatusRequest) (*dto.SeatStatusResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.seat.update_status")
	defer span.End()

	if valid, msg := req.Validate(); !valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSeatStatus, msg)
	}

	seat, previous, err := s.seatRepo.UpdateStatus(ctx, req.SeatID, domain.SeatStatus(req.Status))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if previous != seat.Status && s.availability != nil {
		if err := s.availability.Refresh(ctx, seat.ZoneID); err != nil {
			logger.Get().WithContext(ctx).Warn("failed to refresh zone availability",
				zap.Int64("zone_id", seat.ZoneID),
				zap.Error(err),
			)
		}
	}
	return dto.NewSeatStatusResponse(seat, previous), nil
}
