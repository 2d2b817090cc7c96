package domain

import "time"

// SeatStatus is the lifecycle state of a seat
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusSold      SeatStatus = "sold"
)

// IsValid checks if the status is a known SeatStatus
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusSold:
		return true
	}
	return false
}

// CanTransitionTo reports whether a direct status update from s to next is allowed.
// Sold is terminal and only reachable through a purchase.
func (s SeatStatus) CanTransitionTo(next SeatStatus) bool {
	switch s {
	case SeatStatusAvailable:
		return next == SeatStatusReserved || next == SeatStatusAvailable
	case SeatStatusReserved:
		return next == SeatStatusAvailable || next == SeatStatusReserved
	}
	return false
}

// Category groups events
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Event is a scheduled happening with zones of seats
type Event struct {
	ID              int64     `json:"id"`
	CategoryID      *int64    `json:"category_id,omitempty"`
	CategoryName    string    `json:"category_name,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	BasePrice       float64   `json:"base_price"`
	Capacity        int       `json:"capacity"`
	IsVirtual       bool      `json:"is_virtual"`
	URL             string    `json:"url,omitempty"`
	StreamURL       string    `json:"stream_url,omitempty"`
	VirtualPlatform string    `json:"virtual_platform,omitempty"`
	Location        string    `json:"location,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	ImagePath       string    `json:"image_path,omitempty"`
	IsFeatured      bool      `json:"is_featured"`
	Organizers      string    `json:"organizers,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Zones           []*Zone   `json:"zones,omitempty"`
}

// Zone is a priced section of an event; Capacity counts remaining seats
type Zone struct {
	ID         int64   `json:"id"`
	EventID    int64   `json:"event_id"`
	Name       string  `json:"name"`
	Capacity   int     `json:"capacity"`
	ExtraPrice float64 `json:"extra_price"`
	IsActive   bool    `json:"is_active"`
	Seats      []*Seat `json:"seats,omitempty"`

	AvailableSeats int `json:"available_seats"`
	ReservedSeats  int `json:"reserved_seats"`
	SoldSeats      int `json:"sold_seats"`
}

// Seat is an individually purchasable place in a zone
type Seat struct {
	ID         int64      `json:"id"`
	ZoneID     int64      `json:"zone_id"`
	RowNumber  int        `json:"row_number"`
	SeatNumber int        `json:"seat_number"`
	Status     SeatStatus `json:"status"`
	IsActive   bool       `json:"is_active"`
}

// ZoneLayout describes a zone to create together with its seat rows
type ZoneLayout struct {
	Name       string
	Capacity   int
	ExtraPrice float64
	Rows       []RowLayout
}

// RowLayout is a row number with its seat count; seats are numbered 1..Seats
type RowLayout struct {
	Number int
	Seats  int
}

// SeatCount returns the number of seats the layout generates
func (z ZoneLayout) SeatCount() int {
	n := 0
	for _, r := range z.Rows {
		n += r.Seats
	}
	return n
}

// ZoneAvailability is the cached view of a zone's remaining capacity
type ZoneAvailability struct {
	ZoneID    int64     `json:"zone_id"`
	EventID   int64     `json:"event_id"`
	Capacity  int       `json:"capacity"`
	Available int       `json:"available_seats"`
	Reserved  int       `json:"reserved_seats"`
	Sold      int       `json:"sold_seats"`
	UpdatedAt time.Time `json:"updated_at"`
}
