package dto

import "github.com/prohmpiriya/event-ticketing/internal/domain"

// UpdateSeatStatusRequest represents a manual seat hold or release
type UpdateSeatStatusRequest struct {
	SeatID int64  `json:"seatId"`
	Status string `json:"estado"`
}

// Validate validates the UpdateSeatStatusRequest
func (r *UpdateSeatStatusRequest) Validate() (bool, string) {
	if r.SeatID <= 0 {
		return false, "seatId is required"
	}
	if r.Status == "" {
		return false, "estado is required"
	}
	return true, ""
}

// SeatStatusResponse reports a seat status change
type SeatStatusResponse struct {
	SeatID         int64  `json:"seatId"`
	ZoneID         int64  `json:"zoneId"`
	Row            int    `json:"row"`
	Number         int    `json:"number"`
	Status         string `json:"estado"`
	PreviousStatus string `json:"previousStatus"`
}

// NewSeatStatusResponse maps an updated seat
func NewSeatStatusResponse(s *domain.Seat, previous domain.SeatStatus) *SeatStatusResponse {
	return &SeatStatusResponse{
		SeatID:         s.ID,
		ZoneID:         s.ZoneID,
		Row:            s.RowNumber,
		Number:         s.SeatNumber,
		Status:         string(s.Status),
		PreviousStatus: string(previous),
	}
}
