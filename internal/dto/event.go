package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// RowLayoutRequest is one seat row of a zone layout
type RowLayoutRequest struct {
	Number int `json:"number"`
	Seats  int `json:"seats"`
}

// ZoneLayoutRequest is one zone of the zones JSON form field
type ZoneLayoutRequest struct {
	Name       string             `json:"name"`
	Capacity   int                `json:"capacity"`
	ExtraPrice float64            `json:"extraPrice"`
	Rows       []RowLayoutRequest `json:"rows"`
}

// EventForm is the multipart form used to create and update events.
// The image file travels in the "image" part and is read by the handler.
type EventForm struct {
	Title           string  `form:"title"`
	Description     string  `form:"description"`
	CategoryID      int64   `form:"categoryId"`
	StartDate       string  `form:"startDate"`
	StartTime       string  `form:"startTime"`
	BasePrice       float64 `form:"basePrice"`
	Capacity        int     `form:"capacity"`
	IsVirtual       bool    `form:"isVirtual"`
	URL             string  `form:"url"`
	StreamURL       string  `form:"streamUrl"`
	VirtualPlatform string  `form:"virtualPlatform"`
	Location        string  `form:"location"`
	Latitude        string  `form:"latitude"`
	Longitude       string  `form:"longitude"`
	IsFeatured      bool    `form:"isFeatured"`
	Organizers      string  `form:"organizers"`
	Zones           string  `form:"zones"`
}

// Validate validates the EventForm, reading dates in UTC
func (f *EventForm) Validate() (bool, string) {
	return f.ValidateIn(time.UTC)
}

// ValidateIn validates the EventForm with dates read in loc, the zone ToDomain uses
func (f *EventForm) ValidateIn(loc *time.Location) (bool, string) {
	if loc == nil {
		loc = time.UTC
	}
	if strings.TrimSpace(f.Title) == "" {
		return false, "Event title is required"
	}
	if f.StartDate == "" {
		return false, "startDate is required"
	}
	if _, err := f.StartsAt(loc); err != nil {
		return false, "startDate/startTime must be YYYY-MM-DD and HH:MM"
	}
	if f.BasePrice < 0 {
		return false, "basePrice cannot be negative"
	}
	if f.Capacity < 0 {
		return false, "capacity cannot be negative"
	}
	if _, err := parseCoordinate(f.Latitude, 90); err != nil {
		return false, "latitude must be a number between -90 and 90"
	}
	if _, err := parseCoordinate(f.Longitude, 180); err != nil {
		return false, "longitude must be a number between -180 and 180"
	}
	zones, err := f.ParseZones()
	if err != nil {
		return false, err.Error()
	}
	for i, z := range zones {
		if strings.TrimSpace(z.Name) == "" {
			return false, fmt.Sprintf("zones[%d]: name is required", i)
		}
		if z.Capacity < 0 || z.ExtraPrice < 0 {
			return false, fmt.Sprintf("zones[%d]: capacity and extraPrice cannot be negative", i)
		}
		rowNumbers := make(map[int]struct{}, len(z.Rows))
		for j, row := range z.Rows {
			if row.Number < 1 || row.Seats < 0 {
				return false, fmt.Sprintf("zones[%d].rows[%d]: number must be positive and seats non-negative", i, j)
			}
			if _, dup := rowNumbers[row.Number]; dup {
				return false, fmt.Sprintf("zones[%d].rows[%d]: row %d appears more than once", i, j, row.Number)
			}
			rowNumbers[row.Number] = struct{}{}
		}
	}
	return true, ""
}

// HasZones reports whether the zones field was sent
func (f *EventForm) HasZones() bool {
	return strings.TrimSpace(f.Zones) != ""
}

// ParseZones decodes the zones JSON field; an absent field yields no zones
func (f *EventForm) ParseZones() ([]ZoneLayoutRequest, error) {
	if !f.HasZones() {
		return nil, nil
	}
	var zones []ZoneLayoutRequest
	if err := json.Unmarshal([]byte(f.Zones), &zones); err != nil {
		return nil, fmt.Errorf("zones must be a JSON array: %w", err)
	}
	return zones, nil
}

// StartsAt combines startDate and the optional startTime in loc
func (f *EventForm) StartsAt(loc *time.Location) (time.Time, error) {
	if f.StartTime == "" {
		return time.ParseInLocation(dateLayout, f.StartDate, loc)
	}
	return time.ParseInLocation(dateLayout+" "+timeLayout, f.StartDate+" "+f.StartTime, loc)
}

// ToDomain converts a validated form to an event and its zone layouts
func (f *EventForm) ToDomain(loc *time.Location) (*domain.Event, []domain.ZoneLayout, error) {
	startsAt, err := f.StartsAt(loc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidEventData, err)
	}
	lat, err := parseCoordinate(f.Latitude, 90)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: latitude: %w", domain.ErrInvalidEventData, err)
	}
	lng, err := parseCoordinate(f.Longitude, 180)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: longitude: %w", domain.ErrInvalidEventData, err)
	}
	zones, err := f.ParseZones()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidEventData, err)
	}

	event := &domain.Event{
		Title:           strings.TrimSpace(f.Title),
		Description:     f.Description,
		StartsAt:        startsAt,
		BasePrice:       f.BasePrice,
		Capacity:        f.Capacity,
		IsVirtual:       f.IsVirtual,
		URL:             f.URL,
		StreamURL:       f.StreamURL,
		VirtualPlatform: f.VirtualPlatform,
		Location:        f.Location,
		Latitude:        lat,
		Longitude:       lng,
		IsFeatured:      f.IsFeatured,
		Organizers:      f.Organizers,
		IsActive:        true,
	}
	if f.CategoryID > 0 {
		id := f.CategoryID
		event.CategoryID = &id
	}

	layouts := make([]domain.ZoneLayout, len(zones))
	for i, z := range zones {
		rows := make([]domain.RowLayout, len(z.Rows))
		for j, r := range z.Rows {
			rows[j] = domain.RowLayout{Number: r.Number, Seats: r.Seats}
		}
		layouts[i] = domain.ZoneLayout{
			Name:       strings.TrimSpace(z.Name),
			Capacity:   z.Capacity,
			ExtraPrice: z.ExtraPrice,
			Rows:       rows,
		}
	}
	return event, layouts, nil
}

func parseCoordinate(s string, limit float64) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v < -limit || v > limit {
		return nil, fmt.Errorf("%v out of range", v)
	}
	return &v, nil
}

// SeatResponse represents a seat in an event detail
type SeatResponse struct {
	ID     int64  `json:"id"`
	Row    int    `json:"row"`
	Number int    `json:"number"`
	Status string `json:"estado"`
}

// ZoneResponse represents a zone with its seat counts and, on detail, its seats
type ZoneResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Capacity       int             `json:"capacity"`
	ExtraPrice     float64         `json:"extraPrice"`
	AvailableSeats int             `json:"availableSeats"`
	ReservedSeats  int             `json:"reservedSeats"`
	SoldSeats      int             `json:"soldSeats"`
	Seats          []*SeatResponse `json:"seats,omitempty"`
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID              int64           `json:"id"`
	CategoryID      *int64          `json:"categoryId,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	StartsAt        time.Time       `json:"startsAt"`
	BasePrice       float64         `json:"basePrice"`
	Capacity        int             `json:"capacity"`
	IsVirtual       bool            `json:"isVirtual"`
	URL             string          `json:"url,omitempty"`
	StreamURL       string          `json:"streamUrl,omitempty"`
	VirtualPlatform string          `json:"virtualPlatform,omitempty"`
	Location        string          `json:"location,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	IsFeatured      bool            `json:"isFeatured"`
	Organizers      string          `json:"organizers,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Zones           []*ZoneResponse `json:"zones"`
}

// NewEventResponse maps an event; imageBase is the public uploads prefix
func NewEventResponse(e *domain.Event, imageBase string) *EventResponse {
	resp := &EventResponse{
		ID:              e.ID,
		CategoryID:      e.CategoryID,
		CategoryName:    e.CategoryName,
		Title:           e.Title,
		Description:     e.Description,
		StartsAt:        e.StartsAt,
		BasePrice:       e.BasePrice,
		Capacity:        e.Capacity,
		IsVirtual:       e.IsVirtual,
		URL:             e.URL,
		StreamURL:       e.StreamURL,
		VirtualPlatform: e.VirtualPlatform,
		Location:        e.Location,
		Latitude:        e.Latitude,
		Longitude:       e.Longitude,
		IsFeatured:      e.IsFeatured,
		Organizers:      e.Organizers,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Zones:           make([]*ZoneResponse, 0, len(e.Zones)),
	}
	if e.ImagePath != "" {
		resp.ImageURL = strings.TrimRight(imageBase, "/") + "/" + e.ImagePath
	}
	for _, z := range e.Zones {
		zr := &ZoneResponse{
			ID:             z.ID,
			Name:           z.Name,
			Capacity:       z.Capacity,
			ExtraPrice:     z.ExtraPrice,
			AvailableSeats: z.AvailableSeats,
			ReservedSeats:  z.ReservedSeats,
			SoldSeats:      z.SoldSeats,
		}
		for _, s := range z.Seats {
			zr.Seats = append(zr.Seats, &SeatResponse{
				ID:     s.ID,
				Row:    s.RowNumber,
				Number: s.SeatNumber,
				Status: string(s.Status),
			})
		}
		resp.Zones = append(resp.Zones, zr)
	}
	return resp
}

// NewEventListResponse maps a slice of events
func NewEventListResponse(events []*domain.Event, imageBase string) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = NewEventResponse(e, imageBase)
	}
	return out
}

// ZoneAvailabilityResponse represents cached zone availability
type ZoneAvailabilityResponse struct {
	ZoneID    int64     `json:"zoneId"`
	EventID   int64     `json:"eventId"`
	Capacity  int       `json:"capacity"`
	Available int       `json:"availableSeats"`
	Reserved  int       `json:"reservedSeats"`
	Sold      int       `json:"soldSeats"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewZoneAvailabilityResponse maps zone availability
func NewZoneAvailabilityResponse(a *domain.ZoneAvailability) *ZoneAvailabilityResponse {
	return &ZoneAvailabilityResponse{
		ZoneID:    a.ZoneID,
		EventID:   a.EventID,
		Capacity:  a.Capacity,
		Available: a.Available,
		Reserved:  a.Reserved,
		Sold:      a.Sold,
		UpdatedAt: a.UpdatedAt,
	}
}
