package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// attendanceService implements AttendanceService
type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendanceRepo repository.AttendanceRepository) AttendanceService {
	return &attendanceService{attendanceRepo: attendanceRepo}
}

// ValidateCheckIn checks the ticket against its purchase and records attendance once
func (s *attendanceService) ValidateCheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.attendance.check_in")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("ticket_id", ticketID),
		attribute.Int64("event_id", eventID),
		attribute.Int64("validated_by", validatorID),
	)

	if ticketID <= 0 || eventID <= 0 || userID <= 0 {
		return nil, domain.ErrInvalidTicket
	}
	if validatorID <= 0 {
		return nil, fmt.Errorf("%w: validator is required", domain.ErrInvalidUserData)
	}

	rec, err := s.attendanceRepo.CheckIn(ctx, ticketID, eventID, userID, validatorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return rec, nil
}

// History returns the attendance report
func (s *attendanceService) History(ctx context.Context, filter *dto.AttendanceHistoryFilter) ([]*domain.AttendanceReportEntry, int, error) {
	if filter == nil {
		filter = &dto.AttendanceHistoryFilter{}
	}
	filter.SetDefaults()
	return s.attendanceRepo.List(ctx, filter.ToDomain())
}
