package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
)

// ZoneSyncer copies zone availability from PostgreSQL to Redis
type ZoneSyncer interface {
	// SyncAll syncs every active zone of every active event; returns the number written
	SyncAll(ctx context.Context) (int, error)
}

// zoneSyncer implements ZoneSyncer
type zoneSyncer struct {
	zoneRepo repository.ZoneRepository
	cache    *ZoneAvailabilityCache
}

// NewZoneSyncer creates a new ZoneSyncer
func NewZoneSyncer(zoneRepo repository.ZoneRepository, cache *ZoneAvailabilityCache) ZoneSyncer {
	return &zoneSyncer{zoneRepo: zoneRepo, cache: cache}
}

// SyncAll syncs all active zones to Redis
func (s *zoneSyncer) SyncAll(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	zones, err := s.zoneRepo.ListActiveAvailability(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list zones: %w", err)
	}

	written := 0
	for _, a := range zones {
		ok, err := s.cache.Put(ctx, a)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	logger.Get().Debug("zone availability synced",
		zap.Int("zones", len(zones)),
		zap.Int("written", written),
	)
	return written, nil
}
