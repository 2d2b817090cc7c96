package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/redis"
)

const scriptSetAvailability = "set_zone_availability"

// setAvailabilityScript writes the hash only when ARGV[1] is not older than the
// stored version, so a slow refresh cannot overwrite a newer snapshot.
const setAvailabilityScript = `
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1],
	'version', ARGV[1],
	'zone_id', ARGV[2],
	'event_id', ARGV[3],
	'capacity', ARGV[4],
	'available', ARGV[5],
	'reserved', ARGV[6],
	'sold', ARGV[7])
if tonumber(ARGV[8]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[8])
end
return 1
`

// ZoneAvailabilityKey returns the Redis key of a zone's availability hash
func ZoneAvailabilityKey(zoneID int64) string {
	return fmt.Sprintf("zone:availability:%d", zoneID)
}

// ZoneAvailabilityCache keeps zone availability snapshots in Redis
type ZoneAvailabilityCache struct {
	redis    *redis.Client
	zoneRepo repository.ZoneRepository
	ttl      time.Duration
	log      *logger.Logger
}

// NewZoneAvailabilityCache creates a cache; ttl 0 keeps entries until overwritten
func NewZoneAvailabilityCache(client *redis.Client, zoneRepo repository.ZoneRepository, ttl time.Duration) *ZoneAvailabilityCache {
	client.RegisterScript(scriptSetAvailability, setAvailabilityScript)
	return &ZoneAvailabilityCache{
		redis:    client,
		zoneRepo: zoneRepo,
		ttl:      ttl,
		log:      logger.Get().With(zap.String("component", "zone_availability_cache")),
	}
}

// Get returns cached availability, falling back to storage when the entry is
// missing or Redis is unreachable
func (c *ZoneAvailabilityCache) Get(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	fields, err := c.redis.HGetAll(ctx, ZoneAvailabilityKey(zoneID)).Result()
	if err == nil && len(fields) > 0 {
		if a, perr := parseAvailability(fields); perr == nil {
			return a, nil
		}
	}
	if err != nil {
		c.log.Warn("zone availability cache read failed", zap.Int64("zone_id", zoneID), zap.Error(err))
	}

	a, err := c.zoneRepo.GetAvailability(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Put(ctx, a); err != nil {
		c.log.Warn("zone availability cache write failed", zap.Int64("zone_id", zoneID), zap.Error(err))
	}
	return a, nil
}

// Put stores a snapshot; it reports false when a newer snapshot is already cached
func (c *ZoneAvailabilityCache) Put(ctx context.Context, a *domain.ZoneAvailability) (bool, error) {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}
	res, err := c.redis.RunScript(ctx, scriptSetAvailability,
		[]string{ZoneAvailabilityKey(a.ZoneID)},
		a.UpdatedAt.UnixMilli(), a.ZoneID, a.EventID, a.Capacity, a.Available, a.Reserved, a.Sold,
		c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to store zone availability %d: %w", a.ZoneID, err)
	}
	return res == 1, nil
}

// Refresh reloads zones from storage. Zones that no longer exist are dropped.
func (c *ZoneAvailabilityCache) Refresh(ctx context.Context, zoneIDs ...int64) error {
	for _, id := range zoneIDs {
		a, err := c.zoneRepo.GetAvailability(ctx, id)
		if errors.Is(err, domain.ErrZoneNotFound) {
			if err := c.Remove(ctx, id); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if _, err := c.Put(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Remove drops zones from the cache
func (c *ZoneAvailabilityCache) Remove(ctx context.Context, zoneIDs ...int64) error {
	if len(zoneIDs) == 0 {
		return nil
	}
	keys := make([]string, len(zoneIDs))
	for i, id := range zoneIDs {
		keys[i] = ZoneAvailabilityKey(id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove zone availability: %w", err)
	}
	return nil
}

func parseAvailability(fields map[string]string) (*domain.ZoneAvailability, error) {
	ints := make(map[string]int64, 7)
	for _, name := range []string{"version", "zone_id", "event_id", "capacity", "available", "reserved", "sold"} {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		ints[name] = v
	}
	return &domain.ZoneAvailability{
		ZoneID:    ints["zone_id"],
		EventID:   ints["event_id"],
		Capacity:  int(ints["capacity"]),
		Available: int(ints["available"]),
		Reserved:  int(ints["reserved"]),
		Sold:      int(ints["sold"]),
		UpdatedAt: time.UnixMilli(ints["version"]),
	}, nil
}

// storeAvailability reads availability straight from storage; used when Redis is not configured
type storeAvailability struct {
	zoneRepo repository.ZoneRepository
}

// NewStoreAvailability returns an AvailabilityCache without a cache
func NewStoreAvailability(zoneRepo repository.ZoneRepository) AvailabilityCache {
	return &storeAvailability{zoneRepo: zoneRepo}
}

func (s *storeAvailability) Get(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	return s.zoneRepo.GetAvailability(ctx, zoneID)
}

func (s *storeAvailability) Refresh(context.Context, ...int64) error { return nil }

func (s *storeAvailability) Remove(context.Context, ...int64) error { return nil }

var _ AvailabilityCache = (*ZoneAvailabilityCache)(nil)
