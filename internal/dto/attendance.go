package dto

import (
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

// ValidateQRRequest represents a scanned ticket submitted at the door
type ValidateQRRequest struct {
	QRData      *domain.QRPayload `json:"qrData"`
	ValidatedBy int64             `json:"validadoPor"`
}

// Validate validates the ValidateQRRequest
func (r *ValidateQRRequest) Validate() (bool, string) {
	if r.QRData == nil {
		return false, "qrData is required"
	}
	if r.QRData.TicketID <= 0 || r.QRData.EventID <= 0 || r.QRData.UserID <= 0 {
		return false, "qrData must contain ticketId, eventoId and usuarioId"
	}
	if r.ValidatedBy <= 0 {
		return false, "validadoPor is required"
	}
	return true, ""
}

// CheckInResponse is returned after a successful check-in
type CheckInResponse struct {
	AttendanceID int64     `json:"attendanceId"`
	TicketID     int64     `json:"ticketId"`
	EventID      int64     `json:"eventoId"`
	UserID       int64     `json:"usuarioId"`
	SeatID       int64     `json:"asientoId"`
	ZoneID       int64     `json:"zonaId"`
	ValidatedBy  int64     `json:"validadoPor"`
	CheckedInAt  time.Time `json:"checkedInAt"`
}

// NewCheckInResponse maps an attendance record
func NewCheckInResponse(r *domain.AttendanceRecord) *CheckInResponse {
	return &CheckInResponse{
		AttendanceID: r.ID,
		TicketID:     r.TicketID,
		EventID:      r.EventID,
		UserID:       r.UserID,
		SeatID:       r.SeatID,
		ZoneID:       r.ZoneID,
		ValidatedBy:  r.ValidatedBy,
		CheckedInAt:  r.CheckedInAt,
	}
}

// AttendanceHistoryFilter is bound from the query string
type AttendanceHistoryFilter struct {
	EventID *int64 `form:"eventId"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// SetDefaults clamps paging values
func (f *AttendanceHistoryFilter) SetDefaults() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ToDomain converts the filter
func (f *AttendanceHistoryFilter) ToDomain() domain.AttendanceFilter {
	return domain.AttendanceFilter{EventID: f.EventID, Limit: f.Limit, Offset: f.Offset}
}

// AttendanceEntryResponse is one row of the attendance report
type AttendanceEntryResponse struct {
	AttendanceID     int64     `json:"attendanceId"`
	TicketID         int64     `json:"ticketId"`
	SeatID           int64     `json:"asientoId"`
	ZoneID           int64     `json:"zonaId"`
	UserID           int64     `json:"usuarioId"`
	EventID          int64     `json:"eventoId"`
	ValidatedBy      int64     `json:"validadoPor"`
	CheckedInAt      time.Time `json:"checkedInAt"`
	UserName         string    `json:"userName"`
	UserEmail        string    `json:"userEmail"`
	ZoneName         string    `json:"zoneName"`
	EventTitle       string    `json:"eventTitle"`
	EventDescription string    `json:"eventDescription"`
	EventDate        time.Time `json:"eventDate"`
	SeatLocation     string    `json:"seatLocation"`
}

// NewAttendanceEntryResponse maps a report entry
func NewAttendanceEntryResponse(e *domain.AttendanceReportEntry) *AttendanceEntryResponse {
	return &AttendanceEntryResponse{
		AttendanceID:     e.ID,
		TicketID:         e.TicketID,
		SeatID:           e.SeatID,
		ZoneID:           e.ZoneID,
		UserID:           e.UserID,
		EventID:          e.EventID,
		ValidatedBy:      e.ValidatedBy,
		CheckedInAt:      e.CheckedInAt,
		UserName:         e.UserName,
		UserEmail:        e.UserEmail,
		ZoneName:         e.ZoneName,
		EventTitle:       e.EventTitle,
		EventDescription: e.EventDescription,
		EventDate:        e.EventStartsAt,
		SeatLocation:     domain.SeatLocation(e.RowNumber, e.SeatNumber),
	}
}
