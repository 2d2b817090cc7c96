package domain

import (
	"fmt"
	"time"
)

// AttendanceRecord marks a ticket as used at the venue
type AttendanceRecord struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticket_id"`
	SeatID      int64     `json:"seat_id"`
	ZoneID      int64     `json:"zone_id"`
	UserID      int64     `json:"user_id"`
	EventID     int64     `json:"event_id"`
	ValidatedBy int64     `json:"validated_by"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// AttendanceReportEntry is an attendance record joined for reporting
type AttendanceReportEntry struct {
	AttendanceRecord
	UserName         string    `json:"user_name"`
	UserEmail        string    `json:"user_email"`
	ZoneName         string    `json:"zone_name"`
	EventTitle       string    `json:"event_title"`
	EventDescription string    `json:"event_description"`
	EventStartsAt    time.Time `json:"event_starts_at"`
	RowNumber        int       `json:"row_number"`
	SeatNumber       int       `json:"seat_number"`
}

// SeatLocation formats the seat the way it is printed on tickets
func SeatLocation(row, seat int) string {
	return fmt.Sprintf("Fila %d, Asiento %d", row, seat)
}

// AttendanceFilter narrows the attendance report
type AttendanceFilter struct {
	EventID *int64
	Limit   int
	Offset  int
}
