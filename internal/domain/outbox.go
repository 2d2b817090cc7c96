package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// OutboxStatus is the delivery state of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types written to the outbox
const (
	EventTypePurchaseCompleted = "purchase.completed"
	EventTypeAttendanceChecked = "attendance.checked_in"
	EventTypeSeatStatusChanged = "seat.status_changed"
)

const defaultOutboxMaxRetries = 5

// OutboxMessage is a domain event stored in the same transaction as the state change
type OutboxMessage struct {
	ID            string       `json:"id"`
	AggregateType string       `json:"aggregate_type"`
	AggregateID   string       `json:"aggregate_id"`
	EventType     string       `json:"event_type"`
	Payload       []byte       `json:"payload"`
	Topic         string       `json:"topic"`
	PartitionKey  string       `json:"partition_key"`
	Status        OutboxStatus `json:"status"`
	RetryCount    int          `json:"retry_count"`
	MaxRetries    int          `json:"max_retries"`
	LastError     string       `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
}

// NewOutboxMessage marshals payload into a pending message
func NewOutboxMessage(aggregateType string, aggregateID int64, eventType, topic string, payload interface{}) (*OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatInt(aggregateID, 10)
	return &OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   id,
		EventType:     eventType,
		Payload:       data,
		Topic:         topic,
		PartitionKey:  id,
		Status:        OutboxStatusPending,
		MaxRetries:    defaultOutboxMaxRetries,
		CreatedAt:     time.Now(),
	}, nil
}

// CanRetry reports whether a failed message has attempts left
func (m *OutboxMessage) CanRetry() bool {
	return m.RetryCount < m.MaxRetries
}

// IsLastAttempt reports whether one more failure exhausts the retries
func (m *OutboxMessage) IsLastAttempt() bool {
	return m.RetryCount+1 >= m.MaxRetries
}

// PurchaseCompletedEvent is the outbox payload of a committed cart
type PurchaseCompletedEvent struct {
	PurchaseIDs   []int64   `json:"purchaseIds"`
	UserID        int64     `json:"userId"`
	EventIDs      []int64   `json:"eventIds"`
	ZoneIDs       []int64   `json:"zoneIds"`
	SeatIDs       []int64   `json:"seatIds"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalAmount   float64   `json:"totalAmount"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// AttendanceCheckedInEvent is the outbox payload of a check-in
type AttendanceCheckedInEvent struct {
	AttendanceID int64     `json:"attendanceId"`
	TicketID     int64     `json:"ticketId"`
	EventID      int64     `json:"eventId"`
	UserID       int64     `json:"userId"`
	ValidatedBy  int64     `json:"validatedBy"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// SeatStatusChangedEvent is the outbox payload of a manual seat status update
type SeatStatusChangedEvent struct {
	SeatID     int64      `json:"seatId"`
	ZoneID     int64      `json:"zoneId"`
	From       SeatStatus `json:"from"`
	To         SeatStatus `json:"to"`
	OccurredAt time.Time  `json:"occurredAt"`
}
