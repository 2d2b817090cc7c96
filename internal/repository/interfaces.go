package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	// ListActive lists active events with zone summaries, soonest first
	ListActive(ctx context.Context, featuredOnly bool) ([]*domain.Event, error)
	// GetByID retrieves an active event with its active zones and seats
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	// Create inserts an event together with its zones and generated seats
	Create(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout) error
	// Update updates event fields; when replaceZones is set the current zones and seats are deactivated and rebuilt
	Update(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout, replaceZones bool) error
	// SoftDelete deactivates an event and cascades to its zones and seats
	SoftDelete(ctx context.Context, id int64) error
	// ListCategories lists event categories
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// ZoneRepository defines the interface for zone availability reads
type ZoneRepository interface {
	// GetAvailability returns remaining capacity and seat counts of an active zone
	GetAvailability(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error)
	// ListActiveAvailability returns availability of every active zone (for cache sync)
	ListActiveAvailability(ctx context.Context) ([]*domain.ZoneAvailability, error)
}

// SeatRepository defines the interface for seat state changes outside a purchase
type SeatRepository interface {
	// UpdateStatus locks the seat, validates the transition and applies it; returns the previous status
	UpdateStatus(ctx context.Context, seatID int64, status domain.SeatStatus) (*domain.Seat, domain.SeatStatus, error)
}

// PurchaseRepository defines the interface for purchases
type PurchaseRepository interface {
	// ProcessCart commits every cart item atomically or nothing at all
	ProcessCart(ctx context.Context, userID int64, paymentMethod string, items []domain.CartItem) (*domain.PurchaseResult, error)
	// GetDetail retrieves a purchase joined with event, zone, seat and user data
	GetDetail(ctx context.Context, id int64) (*domain.PurchaseDetail, error)
	// ListByUser lists a user's purchases, newest first
	ListByUser(ctx context.Context, userID int64) ([]*domain.PurchaseDetail, error)
}

// AttendanceRepository defines the interface for check-ins
type AttendanceRepository interface {
	// CheckIn records attendance for a ticket exactly once
	CheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error)
	// List returns the joined attendance report and the total row count
	List(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceReportEntry, int, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users ordered by id
	List(ctx context.Context, includeInactive bool) ([]*domain.User, error)
	// Update writes profile fields and role
	Update(ctx context.Context, user *domain.User) error
	// Deactivate soft deletes an active user
	Deactivate(ctx context.Context, id int64) error
}

// OutboxWriter enqueues domain events inside a caller's transaction
type OutboxWriter interface {
	// EnqueueTx writes a pending outbox message using tx
	EnqueueTx(ctx context.Context, tx pgx.Tx, aggregateType string, aggregateID int64, eventType string, payload interface{}) error
}

// OutboxHandler publishes one claimed outbox message
type OutboxHandler func(ctx context.Context, msg *domain.OutboxMessage) error

// OutboxRepository defines the interface for the outbox relay
type OutboxRepository interface {
	OutboxWriter
	// ProcessBatch claims up to limit messages with SKIP LOCKED, runs handle on each and records the outcome.
	// retryFailed selects failed messages with attempts left instead of pending ones.
	ProcessBatch(ctx context.Context, limit int, retryFailed bool, handle OutboxHandler) (int, error)
	// DeletePublished deletes published messages older than the given days
	DeletePublished(ctx context.Context, olderThanDays int) (int64, error)
}
