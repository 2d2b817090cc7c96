package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

// CartItemRequest is one line of a purchase request
type CartItemRequest struct {
	ZoneID     int64   `json:"zoneId"`
	SeatID     int64   `json:"seatId"`
	Quantity   int     `json:"quantity"`
	ExtraPrice float64 `json:"extraPrice"`
}

// PurchaseRequest represents the request to buy a cart of seats
type PurchaseRequest struct {
	Cart          []CartItemRequest `json:"cart"`
	UserID        int64             `json:"userId"`
	PaymentMethod string            `json:"paymentMethod"`
}

// Validate validates the PurchaseRequest
func (r *PurchaseRequest) Validate() (bool, string) {
	if len(r.Cart) == 0 {
		return false, "Cart must not be empty"
	}
	if r.UserID <= 0 {
		return false, "userId is required"
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return false, "paymentMethod is required"
	}
	seen := make(map[int64]struct{}, len(r.Cart))
	for i, item := range r.Cart {
		switch {
		case item.ZoneID <= 0:
			return false, fmt.Sprintf("cart[%d]: zoneId is required", i)
		case item.SeatID <= 0:
			return false, fmt.Sprintf("cart[%d]: seatId is required", i)
		case item.Quantity < 1:
			return false, fmt.Sprintf("cart[%d]: quantity must be at least 1", i)
		case item.ExtraPrice < 0:
			return false, fmt.Sprintf("cart[%d]: extraPrice cannot be negative", i)
		}
		if _, dup := seen[item.SeatID]; dup {
			return false, fmt.Sprintf("cart[%d]: seat %d appears more than once", i, item.SeatID)
		}
		seen[item.SeatID] = struct{}{}
	}
	return true, ""
}

// CartItems converts the request lines to domain cart items, keeping order
func (r *PurchaseRequest) CartItems() []domain.CartItem {
	items := make([]domain.CartItem, len(r.Cart))
	for i, item := range r.Cart {
		items[i] = domain.CartItem{
			ZoneID:     item.ZoneID,
			SeatID:     item.SeatID,
			Quantity:   item.Quantity,
			ExtraPrice: item.ExtraPrice,
		}
	}
	return items
}

// PurchaseResponse is returned for a committed cart. The single ids describe
// the last line item; purchaseIds lists every ticket in cart order.
type PurchaseResponse struct {
	TicketID    int64   `json:"ticketId"`
	SeatID      int64   `json:"seatId"`
	ZoneID      int64   `json:"zoneId"`
	UserID      int64   `json:"usuarioId"`
	EventID     int64   `json:"eventoId"`
	PurchaseIDs []int64 `json:"purchaseIds"`
	TotalAmount float64 `json:"totalAmount"`
}

// NewPurchaseResponse maps a purchase result
func NewPurchaseResponse(r *domain.PurchaseResult) *PurchaseResponse {
	return &PurchaseResponse{
		TicketID:    r.TicketID,
		SeatID:      r.SeatID,
		ZoneID:      r.ZoneID,
		UserID:      r.UserID,
		EventID:     r.EventID,
		PurchaseIDs: r.PurchaseIDs,
		TotalAmount: r.TotalAmount,
	}
}

// PurchaseHistoryItem is one row of a user's purchase history
type PurchaseHistoryItem struct {
	TicketID      int64     `json:"ticketId"`
	EventID       int64     `json:"eventoId"`
	EventTitle    string    `json:"eventTitle"`
	EventDate     time.Time `json:"eventDate"`
	Location      string    `json:"location,omitempty"`
	ZoneID        int64     `json:"zonaId"`
	ZoneName      string    `json:"zoneName"`
	SeatID        int64     `json:"asientoId"`
	Seat          string    `json:"seat"`
	Quantity      int       `json:"quantity"`
	ExtraPrice    float64   `json:"extraPrice"`
	TotalPrice    float64   `json:"totalPrice"`
	PaymentMethod string    `json:"paymentMethod"`
	PurchasedAt   time.Time `json:"purchasedAt"`
	CheckedIn     bool      `json:"checkedIn"`
	QR            string    `json:"qrData"`
}

// NewPurchaseHistoryItem maps a purchase detail; qr is the serialized QR payload
func NewPurchaseHistoryItem(d *domain.PurchaseDetail, qr string) *PurchaseHistoryItem {
	return &PurchaseHistoryItem{
		TicketID:      d.ID,
		EventID:       d.EventID,
		EventTitle:    d.EventTitle,
		EventDate:     d.EventStartsAt,
		Location:      d.EventLocation,
		ZoneID:        d.ZoneID,
		ZoneName:      d.ZoneName,
		SeatID:        d.SeatID,
		Seat:          domain.SeatLocation(d.RowNumber, d.SeatNumber),
		Quantity:      d.Quantity,
		ExtraPrice:    d.ExtraPrice,
		TotalPrice:    d.TotalPrice,
		PaymentMethod: d.PaymentMethod,
		PurchasedAt:   d.CreatedAt,
		CheckedIn:     d.CheckedIn,
		QR:            qr,
	}
}
