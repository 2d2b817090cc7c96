package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/telemetry"
)

// eventService implements EventService
type eventService struct {
	eventRepo    repository.EventRepository
	images       ImageStore
	availability AvailabilityCache
	loc          *time.Location
}

// NewEventService creates a new EventService. Form dates are read in loc; availability may be nil.
func NewEventService(eventRepo repository.EventRepository, images ImageStore, availability AvailabilityCache, loc *time.Location) EventService {
	if loc == nil {
		loc = time.Local
	}
	return &eventService{
		eventRepo:    eventRepo,
		images:       images,
		availability: availability,
		loc:          loc,
	}
}

// ListEvents lists active events
func (s *eventService) ListEvents(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	return s.eventRepo.ListActive(ctx, featuredOnly)
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// CreateEvent creates an event with its zones and seats
func (s *eventService) CreateEvent(ctx context.Context, form *dto.EventForm, image *ImageUpload) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	event, zones, err := s.parseForm(form)
	if err != nil {
		return nil, err
	}
	if err := checkZoneCapacity(event.Capacity, zones); err != nil {
		return nil, err
	}

	stored, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}
	event.ImagePath = stored

	if err := s.eventRepo.Create(ctx, event, zones); err != nil {
		telemetry.RecordError(span, err)
		s.discardImage(ctx, stored)
		return nil, err
	}

	s.refreshZones(ctx, nil, event.Zones)
	logger.Get().WithContext(ctx).Info("event created",
		zap.Int64("event_id", event.ID),
		zap.Int("zones", len(event.Zones)),
	)
	return event, nil
}

// UpdateEvent updates an event. Zones and seats are rebuilt only when the form carries zones.
func (s *eventService) UpdateEvent(ctx context.Context, id int64, form *dto.EventForm, image *ImageUpload) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	event, zones, err := s.parseForm(form)
	if err != nil {
		return nil, err
	}
	event.ID = id

	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	replaceZones := form.HasZones()
	if replaceZones {
		if err := checkZoneCapacity(event.Capacity, zones); err != nil {
			return nil, err
		}
	}

	stored, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}
	event.ImagePath = stored

	if err := s.eventRepo.Update(ctx, event, zones, replaceZones); err != nil {
		telemetry.RecordError(span, err)
		s.discardImage(ctx, stored)
		return nil, err
	}

	if stored != "" && existing.ImagePath != "" && existing.ImagePath != stored {
		s.discardImage(ctx, existing.ImagePath)
	}
	if replaceZones {
		s.refreshZones(ctx, existing.Zones, event.Zones)
	} else {
		event.Zones = existing.Zones
	}
	return event, nil
}

// DeleteEvent soft deletes an event
func (s *eventService) DeleteEvent(ctx context.Context, id int64) error {
	existing, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.eventRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.refreshZones(ctx, existing.Zones, nil)
	return nil
}

// ListCategories lists event categories
func (s *eventService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.eventRepo.ListCategories(ctx)
}

func (s *eventService) parseForm(form *dto.EventForm) (*domain.Event, []domain.ZoneLayout, error) {
	if form == nil {
		return nil, nil, fmt.Errorf("%w: empty form", domain.ErrInvalidEventData)
	}
	if valid, msg := form.ValidateIn(s.loc); !valid {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidEventData, msg)
	}
	return form.ToDomain(s.loc)
}

// checkZoneCapacity rejects layouts whose zone capacities add up to more than the event capacity
func checkZoneCapacity(eventCapacity int, zones []domain.ZoneLayout) error {
	total := 0
	for _, z := range zones {
		total += z.Capacity
	}
	if total > eventCapacity {
		return fmt.Errorf("%w: zones total %d, event capacity %d", domain.ErrZoneCapacityExceeded, total, eventCapacity)
	}
	return nil
}

func (s *eventService) saveImage(ctx context.Context, image *ImageUpload) (string, error) {
	if image == nil || s.images == nil {
		return "", nil
	}
	return s.images.Save(ctx, image)
}

func (s *eventService) discardImage(ctx context.Context, name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		logger.Get().WithContext(ctx).Warn("failed to delete event image", zap.String("image", name), zap.Error(err))
	}
}

// refreshZones drops removed zones from the availability cache and loads the new ones
func (s *eventService) refreshZones(ctx context.Context, removed, added []*domain.Zone) {
	if s.availability == nil {
		return
	}
	ids := func(zones []*domain.Zone) []int64 {
		out := make([]int64, 0, len(zones))
		for _, z := range zones {
			out = append(out, z.ID)
		}
		return out
	}

	l := logger.Get().WithContext(ctx)
	if err := s.availability.Remove(ctx, ids(removed)...); err != nil {
		l.Warn("failed to drop zone availability", zap.Error(err))
	}
	if err := s.availability.Refresh(ctx, ids(added)...); err != nil {
		l.Warn("failed to load zone availability", zap.Error(err))
	}
}
