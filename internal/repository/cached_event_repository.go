package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/redis"
)

const (
	eventListAllKey      = "event:list:all"
	eventListFeaturedKey = "event:list:featured"
	categoryListKey      = "event:categories"

	// Lists carry per-zone seat counts, so they expire quickly
	defaultEventListTTL = 15 * time.Second
	categoryCacheTTL    = time.Hour
)

// CachedEventRepository wraps EventRepository with Redis caching of the public lists.
// Event detail is never cached because it carries live seat status.
type CachedEventRepository struct {
	repo    EventRepository
	cache   *redis.Client
	listTTL time.Duration
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache *redis.Client, listTTL time.Duration) *CachedEventRepository {
	if listTTL <= 0 {
		listTTL = defaultEventListTTL
	}
	return &CachedEventRepository{repo: repo, cache: cache, listTTL: listTTL}
}

// ListActive lists active events with caching
func (r *CachedEventRepository) ListActive(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	key := eventListAllKey
	if featuredOnly {
		key = eventListFeaturedKey
	}

	var events []*domain.Event
	if r.load(ctx, key, &events) {
		return events, nil
	}

	events, err := r.repo.ListActive(ctx, featuredOnly)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, events, r.listTTL)
	return events, nil
}

// GetByID bypasses the cache
func (r *CachedEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return r.repo.GetByID(ctx, id)
}

// Create creates an event and invalidates list caches
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout) error {
	if err := r.repo.Create(ctx, event, zones); err != nil {
		return err
	}
	r.invalidateLists(ctx)
	return nil
}

// Update updates an event and invalidates list caches
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout, replaceZones bool) error {
	if err := r.repo.Update(ctx, event, zones, replaceZones); err != nil {
		return err
	}
	r.invalidateLists(ctx)
	return nil
}

// SoftDelete deactivates an event and invalidates list caches
func (r *CachedEventRepository) SoftDelete(ctx context.Context, id int64) error {
	if err := r.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	r.invalidateLists(ctx)
	return nil
}

// ListCategories lists categories with caching
func (r *CachedEventRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if r.load(ctx, categoryListKey, &categories) {
		return categories, nil
	}

	categories, err := r.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, categoryListKey, categories, categoryCacheTTL)
	return categories, nil
}

// InvalidateLists drops cached event lists; called after purchases change seat counts
func (r *CachedEventRepository) InvalidateLists(ctx context.Context) {
	r.invalidateLists(ctx)
}

// --- Helper functions ---

func (r *CachedEventRepository) load(ctx context.Context, key string, dst interface{}) bool {
	cached, err := r.cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (r *CachedEventRepository) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), ttl)
}

func (r *CachedEventRepository) invalidateLists(ctx context.Context) {
	r.cache.Del(ctx, eventListAllKey, eventListFeaturedKey)
}

var _ EventRepository = (*CachedEventRepository)(nil)
