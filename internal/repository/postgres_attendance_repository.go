package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
)

// PostgresAttendanceRepository implements AttendanceRepository using PostgreSQL
type PostgresAttendanceRepository struct {
	db     database.DBTX
	outbox OutboxWriter
}

// NewPostgresAttendanceRepository creates a new PostgresAttendanceRepository
func NewPostgresAttendanceRepository(db database.DBTX, outbox OutboxWriter) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db, outbox: outbox}
}

// CheckIn matches the ticket to its purchase and inserts the attendance row.
// The unique ticket_id constraint makes concurrent duplicate scans lose cleanly.
func (r *PostgresAttendanceRepository) CheckIn(ctx context.Context, ticketID, eventID, userID, validatorID int64) (*domain.AttendanceRecord, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrTransactionFailure, err)
	}
	defer tx.Rollback(ctx)

	rec := &domain.AttendanceRecord{
		TicketID:    ticketID,
		EventID:     eventID,
		UserID:      userID,
		ValidatedBy: validatorID,
	}

	err = tx.QueryRow(ctx, `
		SELECT seat_id, zone_id
		FROM purchases
		WHERE id = $1 AND event_id = $2 AND user_id = $3`,
		ticketID, eventID, userID,
	).Scan(&rec.SeatID, &rec.ZoneID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidTicket
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO attendance_history (ticket_id, seat_id, zone_id, user_id, event_id, validated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticket_id) DO NOTHING
		RETURNING id, checked_in_at`,
		rec.TicketID, rec.SeatID, rec.ZoneID, rec.UserID, rec.EventID, rec.ValidatedBy,
	).Scan(&rec.ID, &rec.CheckedInAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert attendance: %w", err)
	}

	event := domain.AttendanceCheckedInEvent{
		AttendanceID: rec.ID,
		TicketID:     rec.TicketID,
		EventID:      rec.EventID,
		UserID:       rec.UserID,
		ValidatedBy:  rec.ValidatedBy,
		OccurredAt:   time.Now(),
	}
	if err := r.outbox.EnqueueTx(ctx, tx, "attendance", rec.ID, domain.EventTypeAttendanceChecked, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return rec, nil
}

// List returns the joined attendance report, newest first
func (r *PostgresAttendanceRepository) List(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceReportEntry, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		conditions = append(conditions, fmt.Sprintf("a.event_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_history a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT a.id, a.ticket_id, a.seat_id, a.zone_id, a.user_id, a.event_id,
			a.validated_by, a.checked_in_at,
			TRIM(u.first_name || ' ' || u.last_name), u.email,
			z.name, e.title, COALESCE(e.description, ''), e.starts_at,
			s.row_number, s.seat_number
		FROM attendance_history a
		JOIN users u ON u.id = a.user_id
		JOIN zones z ON z.id = a.zone_id
		JOIN events e ON e.id = a.event_id
		JOIN seats s ON s.id = a.seat_id
		%s
		ORDER BY a.checked_in_at DESC, a.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AttendanceReportEntry
	for rows.Next() {
		e := &domain.AttendanceReportEntry{}
		if err := rows.Scan(
			&e.ID, &e.TicketID, &e.SeatID, &e.ZoneID, &e.UserID, &e.EventID,
			&e.ValidatedBy, &e.CheckedInAt,
			&e.UserName, &e.UserEmail,
			&e.ZoneName, &e.EventTitle, &e.EventDescription, &e.EventStartsAt,
			&e.RowNumber, &e.SeatNumber,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance: %w", err)
	}
	return entries, total, nil
}

var _ AttendanceRepository = (*PostgresAttendanceRepository)(nil)
