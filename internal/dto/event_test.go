package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
)

const twoZones = `[
	{"name":"VIP","capacity":4,"extraPrice":50,"rows":[{"number":1,"seats":2},{"number":2,"seats":2}]},
	{"name":"General","capacity":10,"extraPrice":0,"rows":[{"number":1,"seats":10}]}
]`

func validForm() EventForm {
	return EventForm{
		Title:     "Concierto",
		StartDate: "2026-12-01",
		StartTime: "20:30",
		BasePrice: 30,
		Capacity:  100,
		Zones:     twoZones,
	}
}

func TestEventForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(f *EventForm)
		want    bool
		wantMsg string
	}{
		{
			name:   "valid form",
			modify: func(f *EventForm) {},
			want:   true,
		},
		{
			name:   "valid form without zones or time",
			modify: func(f *EventForm) { f.Zones = ""; f.StartTime = "" },
			want:   true,
		},
		{
			name:    "missing title",
			modify:  func(f *EventForm) { f.Title = " " },
			want:    false,
			wantMsg: "Event title is required",
		},
		{
			name:    "missing date",
			modify:  func(f *EventForm) { f.StartDate = "" },
			want:    false,
			wantMsg: "startDate is required",
		},
		{
			name:    "bad time",
			modify:  func(f *EventForm) { f.StartTime = "8pm" },
			want:    false,
			wantMsg: "startDate/startTime must be YYYY-MM-DD and HH:MM",
		},
		{
			name:    "negative capacity",
			modify:  func(f *EventForm) { f.Capacity = -1 },
			want:    false,
			wantMsg: "capacity cannot be negative",
		},
		{
			name:    "latitude out of range",
			modify:  func(f *EventForm) { f.Latitude = "91" },
			want:    false,
			wantMsg: "latitude must be a number between -90 and 90",
		},
		{
			name:    "unnamed zone",
			modify:  func(f *EventForm) { f.Zones = `[{"capacity":1}]` },
			want:    false,
			wantMsg: "zones[0]: name is required",
		},
		{
			name:    "bad row",
			modify:  func(f *EventForm) { f.Zones = `[{"name":"A","rows":[{"number":0,"seats":3}]}]` },
			want:    false,
			wantMsg: "zones[0].rows[0]: number must be positive and seats non-negative",
		},
		{
			name:    "repeated row number",
			modify:  func(f *EventForm) { f.Zones = `[{"name":"VIP","capacity":10,"rows":[{"number":1,"seats":5},{"number":1,"seats":5}]}]` },
			want:    false,
			wantMsg: "zones[0].rows[1]: row 1 appears more than once",
		},
		{
			name:   "same row number in different zones",
			modify: func(f *EventForm) { f.Zones = `[{"name":"A","rows":[{"number":1,"seats":2}]},{"name":"B","rows":[{"number":1,"seats":2}]}]` },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			got, msg := f.Validate()
			if got != tt.want {
				t.Errorf("Validate() got = %v, want %v", got, tt.want)
			}
			if msg != tt.wantMsg {
				t.Errorf("Validate() msg = %v, want %v", msg, tt.wantMsg)
			}
		})
	}
}

func TestEventForm_ValidateRejectsMalformedZones(t *testing.T) {
	f := validForm()
	f.Zones = `{"name":"not an array"}`
	ok, msg := f.Validate()
	if ok || !strings.HasPrefix(msg, "zones must be a JSON array") {
		t.Errorf("Validate() = %v %q", ok, msg)
	}
}

func TestEventForm_ValidateIn(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	f := validForm()
	if ok, msg := f.ValidateIn(bogota); !ok {
		t.Errorf("ValidateIn(bogota) = %v %q", ok, msg)
	}
	if ok, msg := f.ValidateIn(nil); !ok {
		t.Errorf("ValidateIn(nil) = %v %q", ok, msg)
	}

	f.StartTime = "25:00"
	if ok, _ := f.ValidateIn(bogota); ok {
		t.Error("ValidateIn accepted an impossible time")
	}
}

func TestEventForm_ToDomain(t *testing.T) {
	f := validForm()
	f.CategoryID = 3
	f.Latitude = "-34.6"
	f.IsFeatured = true

	event, zones, err := f.ToDomain(time.UTC)
	if err != nil {
		t.Fatalf("ToDomain() error = %v", err)
	}

	wantStart := time.Date(2026, 12, 1, 20, 30, 0, 0, time.UTC)
	if !event.StartsAt.Equal(wantStart) {
		t.Errorf("StartsAt = %v, want %v", event.StartsAt, wantStart)
	}
	if event.CategoryID == nil || *event.CategoryID != 3 {
		t.Errorf("CategoryID = %v, want 3", event.CategoryID)
	}
	if event.Latitude == nil || *event.Latitude != -34.6 {
		t.Errorf("Latitude = %v", event.Latitude)
	}
	if event.Longitude != nil {
		t.Errorf("Longitude = %v, want nil", *event.Longitude)
	}
	if !event.IsFeatured || !event.IsActive {
		t.Errorf("IsFeatured/IsActive = %v/%v", event.IsFeatured, event.IsActive)
	}

	if len(zones) != 2 {
		t.Fatalf("zones len = %d, want 2", len(zones))
	}
	if zones[0].Name != "VIP" || zones[0].SeatCount() != 4 || zones[0].ExtraPrice != 50 {
		t.Errorf("zones[0] = %+v", zones[0])
	}
	if zones[1].Rows[0] != (domain.RowLayout{Number: 1, Seats: 10}) {
		t.Errorf("zones[1].Rows[0] = %+v", zones[1].Rows[0])
	}
}

func TestNewEventResponse(t *testing.T) {
	e := &domain.Event{
		ID:        1,
		Title:     "Concierto",
		ImagePath: "123-poster.png",
		Zones: []*domain.Zone{{
			ID: 2, Name: "VIP", AvailableSeats: 1, SoldSeats: 1,
			Seats: []*domain.Seat{{ID: 9, RowNumber: 1, SeatNumber: 2, Status: domain.SeatStatusSold}},
		}},
	}

	got := NewEventResponse(e, "/uploads/")
	if got.ImageURL != "/uploads/123-poster.png" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if len(got.Zones) != 1 || got.Zones[0].Seats[0].Status != "sold" {
		t.Errorf("Zones = %+v", got.Zones)
	}

	got = NewEventResponse(&domain.Event{ID: 2}, "/uploads")
	if got.ImageURL != "" || got.Zones == nil {
		t.Errorf("empty event response = %+v", got)
	}
}
