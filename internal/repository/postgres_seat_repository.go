package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
)

// PostgresSeatRepository implements SeatRepository using PostgreSQL
type PostgresSeatRepository struct {
	db     database.DBTX
	outbox OutboxWriter
}

// NewPostgresSeatRepository creates a new PostgresSeatRepository
func NewPostgresSeatRepository(db database.DBTX, outbox OutboxWriter) *PostgresSeatRepository {
	return &PostgresSeatRepository{db: db, outbox: outbox}
}

// UpdateStatus moves a seat between available and reserved under a row lock.
// Sold seats are immutable here; selling only happens in a purchase.
func (r *PostgresSeatRepository) UpdateStatus(ctx context.Context, seatID int64, status domain.SeatStatus) (*domain.Seat, domain.SeatStatus, error) {
	if !status.IsValid() || status == domain.SeatStatusSold {
		return nil, "", fmt.Errorf("%w: %q", domain.ErrInvalidSeatStatus, status)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrTransactionFailure, err)
	}
	defer tx.Rollback(ctx)

	seat := &domain.Seat{ID: seatID, IsActive: true}
	var current string
	err = tx.QueryRow(ctx, `
		SELECT zone_id, row_number, seat_number, status
		FROM seats
		WHERE id = $1 AND is_active
		FOR UPDATE`, seatID,
	).Scan(&seat.ZoneID, &seat.RowNumber, &seat.SeatNumber, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", domain.ErrSeatNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to lock seat: %w", err)
	}

	previous := domain.SeatStatus(current)
	if previous == domain.SeatStatusSold {
		return nil, "", domain.ErrSeatAlreadySold
	}
	if !previous.CanTransitionTo(status) {
		return nil, "", fmt.Errorf("%w: %s -> %s", domain.ErrInvalidSeatStatus, previous, status)
	}

	seat.Status = status
	if previous == status {
		return seat, previous, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE seats SET status = $2, updated_at = NOW() WHERE id = $1`,
		seatID, string(status)); err != nil {
		return nil, "", fmt.Errorf("failed to update seat: %w", err)
	}

	event := domain.SeatStatusChangedEvent{
		SeatID:     seatID,
		ZoneID:     seat.ZoneID,
		From:       previous,
		To:         status,
		OccurredAt: time.Now(),
	}
	if err := r.outbox.EnqueueTx(ctx, tx, "seat", seatID, domain.EventTypeSeatStatusChanged, event); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return seat, previous, nil
}

var _ SeatRepository = (*PostgresSeatRepository)(nil)
