package domain

import "time"

// CartItem is one line of a purchase request
type CartItem struct {
	ZoneID     int64
	SeatID     int64
	Quantity   int
	ExtraPrice float64
}

// Total returns quantity × extra price
func (c CartItem) Total() float64 {
	return float64(c.Quantity) * c.ExtraPrice
}

// Purchase is a committed ticket purchase for one seat
type Purchase struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ZoneID        int64     `json:"zone_id"`
	EventID       int64     `json:"event_id"`
	SeatID        int64     `json:"seat_id"`
	Quantity      int       `json:"quantity"`
	ExtraPrice    float64   `json:"extra_price"`
	TotalPrice    float64   `json:"total_price"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// PurchaseResult is returned after a cart commits.
// The single-id fields describe the last line item.
type PurchaseResult struct {
	PurchaseIDs []int64
	TicketID    int64
	SeatID      int64
	ZoneID      int64
	UserID      int64
	EventID     int64
	TotalAmount float64
	Purchases   []*Purchase
}

// PurchaseDetail is a purchase joined with event, zone and seat data
type PurchaseDetail struct {
	Purchase
	EventTitle    string    `json:"event_title"`
	EventStartsAt time.Time `json:"event_starts_at"`
	EventLocation string    `json:"event_location"`
	ZoneName      string    `json:"zone_name"`
	RowNumber     int       `json:"row_number"`
	SeatNumber    int       `json:"seat_number"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	CheckedIn     bool      `json:"checked_in"`
}

// QRPayload is the content encoded in a ticket QR code
type QRPayload struct {
	TicketID int64 `json:"ticketId"`
	SeatID   int64 `json:"asientoId"`
	ZoneID   int64 `json:"zonaId"`
	UserID   int64 `json:"usuarioId"`
	EventID  int64 `json:"eventoId"`
}

// QRPayloadFor builds the QR content of a purchase
func QRPayloadFor(p *Purchase) QRPayload {
	return QRPayload{
		TicketID: p.ID,
		SeatID:   p.SeatID,
		ZoneID:   p.ZoneID,
		UserID:   p.UserID,
		EventID:  p.EventID,
	}
}
