package service

import (
	"context"
	"io"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/dto"
)

// PurchaseService defines the interface for purchase business logic
type PurchaseService interface {
	// ProcessPurchase validates and commits a cart atomically
	ProcessPurchase(ctx context.Context, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	// GetPurchase retrieves a purchase with event, zone and seat data
	GetPurchase(ctx context.Context, id int64) (*domain.PurchaseDetail, error)
	// ListUserPurchases lists a user's purchases, newest first
	ListUserPurchases(ctx context.Context, userID int64) ([]*dto.PurchaseHistoryItem, error)
}

// SeatService defines the interface for manual seat status changes
type SeatService interface {
	// UpdateStatus moves a seat between available and reserved
	UpdateStatus(ctx context.Context, req *dto.UpdateSeatStatusRequest) (*dto.SeatStatusResponse, error)
}

// AttendanceService defines the interface for ticket check-in
type AttendanceService interface {
	// ValidateCheckIn records attendance for a ticket exactly once
	ValidateCheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error)
	// History returns the attendance report and the total count
	History(ctx context.Context, filter *dto.AttendanceHistoryFilter) ([]*domain.AttendanceReportEntry, int, error)
}

// ImageUpload is an event image received with a form
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// EventService defines the interface for event business logic
type EventService interface {
	// ListEvents lists active events; featuredOnly narrows to featured events
	ListEvents(ctx context.Context, featuredOnly bool) ([]*domain.Event, error)
	// GetEvent retrieves an active event with zones and seats
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	// CreateEvent creates an event with its zones, seats and optional image
	CreateEvent(ctx context.Context, form *dto.EventForm, image *ImageUpload) (*domain.Event, error)
	// UpdateEvent updates an event; zones are replaced only when the form carries them
	UpdateEvent(ctx context.Context, id int64, form *dto.EventForm, image *ImageUpload) (*domain.Event, error)
	// DeleteEvent soft deletes an event with its zones and seats
	DeleteEvent(ctx context.Context, id int64) error
	// ListCategories lists event categories
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// AuthService defines the interface for accounts and tokens
type AuthService interface {
	// Register creates a standard user account
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	// Login checks credentials and issues an access token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// UserService defines the interface for user administration
type UserService interface {
	// ListUsers lists accounts, active only unless includeInactive is set
	ListUsers(ctx context.Context, includeInactive bool) ([]*domain.User, error)
	// GetUser retrieves one account
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// UpdateUser applies a partial profile or role update
	UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*domain.User, error)
	// DeactivateUser soft deletes an account; actorID cannot deactivate itself
	DeactivateUser(ctx context.Context, id, actorID int64) error
}

// TicketService renders printable tickets
type TicketService interface {
	// RenderTicket writes a PDF ticket with the QR payload of the purchase
	RenderTicket(ctx context.Context, purchase *domain.PurchaseDetail, w io.Writer) error
}

// AvailabilityCache defines the zone availability cache
type AvailabilityCache interface {
	// Get returns cached availability, loading it from storage on a miss
	Get(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error)
	// Refresh reloads the given zones from storage into the cache
	Refresh(ctx context.Context, zoneIDs ...int64) error
	// Remove drops zones from the cache
	Remove(ctx context.Context, zoneIDs ...int64) error
}
