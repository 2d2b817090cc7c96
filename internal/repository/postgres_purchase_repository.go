package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
)

// PostgresPurchaseRepository implements PurchaseRepository using PostgreSQL
type PostgresPurchaseRepository struct {
	db     database.DBTX
	outbox OutboxWriter
}

// NewPostgresPurchaseRepository creates a new PostgresPurchaseRepository
func NewPostgresPurchaseRepository(db database.DBTX, outbox OutboxWriter) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{db: db, outbox: outbox}
}

type lockedZone struct {
	eventID    int64
	capacity   int
	extraPrice float64
}

// ProcessCart runs the whole cart in one transaction.
// Zones are locked in ascending id order before any item is processed so that
// concurrent carts touching the same zones cannot deadlock; items are then
// applied strictly in cart order.
func (r *PostgresPurchaseRepository) ProcessCart(ctx context.Context, userID int64, paymentMethod string, items []domain.CartItem) (*domain.PurchaseResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrTransactionFailure, err)
	}
	defer tx.Rollback(ctx)

	var userExists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND is_active)`, userID,
	).Scan(&userExists); err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !userExists {
		return nil, domain.ErrUserNotFound
	}

	zones, err := lockZones(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	result := &domain.PurchaseResult{UserID: userID}
	event := domain.PurchaseCompletedEvent{UserID: userID, PaymentMethod: paymentMethod}

	for i, item := range items {
		zone, ok := zones[item.ZoneID]
		if !ok {
			return nil, fmt.Errorf("item %d: zone %d: %w", i, item.ZoneID, domain.ErrZoneNotFound)
		}
		if zone.capacity < item.Quantity {
			return nil, fmt.Errorf("item %d: zone %d has %d left, %d requested: %w",
				i, item.ZoneID, zone.capacity, item.Quantity, domain.ErrInsufficientCapacity)
		}
		if math.Abs(zone.extraPrice-item.ExtraPrice) > 0.005 {
			return nil, fmt.Errorf("item %d: extra price %.2f does not match zone price %.2f: %w",
				i, item.ExtraPrice, zone.extraPrice, domain.ErrInvalidCart)
		}

		purchase := &domain.Purchase{
			UserID:        userID,
			ZoneID:        item.ZoneID,
			EventID:       zone.eventID,
			SeatID:        item.SeatID,
			Quantity:      item.Quantity,
			ExtraPrice:    item.ExtraPrice,
			TotalPrice:    item.Total(),
			PaymentMethod: paymentMethod,
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO purchases (user_id, zone_id, event_id, seat_id, quantity, extra_price, total_price, payment_method)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`,
			purchase.UserID, purchase.ZoneID, purchase.EventID, purchase.SeatID,
			purchase.Quantity, purchase.ExtraPrice, purchase.TotalPrice, purchase.PaymentMethod,
		).Scan(&purchase.ID, &purchase.CreatedAt); err != nil {
			return nil, fmt.Errorf("item %d: failed to insert purchase: %w", i, err)
		}

		if err := markSeatSold(ctx, tx, item.SeatID, item.ZoneID); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE zones SET capacity = capacity - $1 WHERE id = $2 AND capacity >= $1`,
			item.Quantity, item.ZoneID)
		if err != nil {
			return nil, fmt.Errorf("item %d: failed to decrement zone capacity: %w", i, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("item %d: zone %d: %w", i, item.ZoneID, domain.ErrInsufficientCapacity)
		}
		zone.capacity -= item.Quantity
		zones[item.ZoneID] = zone

		result.PurchaseIDs = append(result.PurchaseIDs, purchase.ID)
		result.Purchases = append(result.Purchases, purchase)
		result.TicketID = purchase.ID
		result.SeatID = purchase.SeatID
		result.ZoneID = purchase.ZoneID
		result.EventID = purchase.EventID
		result.TotalAmount += purchase.TotalPrice

		event.PurchaseIDs = append(event.PurchaseIDs, purchase.ID)
		event.EventIDs = appendUnique(event.EventIDs, purchase.EventID)
		event.ZoneIDs = appendUnique(event.ZoneIDs, purchase.ZoneID)
		event.SeatIDs = append(event.SeatIDs, purchase.SeatID)
	}

	event.TotalAmount = result.TotalAmount
	event.OccurredAt = time.Now()
	if err := r.outbox.EnqueueTx(ctx, tx, "purchase", result.TicketID, domain.EventTypePurchaseCompleted, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}

	return result, nil
}

func lockZones(ctx context.Context, tx pgx.Tx, items []domain.CartItem) (map[int64]lockedZone, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ZoneID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	rows, err := tx.Query(ctx, `
		SELECT id, event_id, capacity, extra_price
		FROM zones
		WHERE id = ANY($1) AND is_active
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock zones: %w", err)
	}
	defer rows.Close()

	zones := make(map[int64]lockedZone, len(ids))
	for rows.Next() {
		var id int64
		var z lockedZone
		if err := rows.Scan(&id, &z.eventID, &z.capacity, &z.extraPrice); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones[id] = z
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read zones: %w", err)
	}
	return zones, nil
}

// markSeatSold is a conditional update on available seats only; a zero row
// count is diagnosed so the caller can tell a missing seat from a held or sold one.
func markSeatSold(ctx context.Context, tx pgx.Tx, seatID, zoneID int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE seats SET status = 'sold', updated_at = NOW()
		WHERE id = $1 AND zone_id = $2 AND is_active AND status = 'available'`,
		seatID, zoneID)
	if err != nil {
		return fmt.Errorf("failed to update seat %d: %w", seatID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM seats WHERE id = $1 AND zone_id = $2 AND is_active`,
		seatID, zoneID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("seat %d: %w: %w", seatID, domain.ErrSeatUpdateFailed, domain.ErrSeatNotFound)
	}
	if err != nil {
		return fmt.Errorf("seat %d: %w: %w", seatID, domain.ErrSeatUpdateFailed, err)
	}
	if domain.SeatStatus(status) == domain.SeatStatusReserved {
		return fmt.Errorf("seat %d: %w: %w", seatID, domain.ErrSeatUpdateFailed, domain.ErrSeatHeld)
	}
	return fmt.Errorf("seat %d: %w: %w", seatID, domain.ErrSeatUpdateFailed, domain.ErrSeatAlreadySold)
}

func appendUnique(ids []int64, id int64) []int64 {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

const purchaseDetailColumns = `
	p.id, p.user_id, p.zone_id, p.event_id, p.seat_id, p.quantity,
	p.extra_price, p.total_price, p.payment_method, p.created_at,
	e.title, e.starts_at, COALESCE(e.location, ''),
	z.name, s.row_number, s.seat_number,
	TRIM(u.first_name || ' ' || u.last_name), u.email,
	EXISTS (SELECT 1 FROM attendance_history a WHERE a.ticket_id = p.id)`

const purchaseDetailJoins = `
	FROM purchases p
	JOIN events e ON e.id = p.event_id
	JOIN zones z ON z.id = p.zone_id
	JOIN seats s ON s.id = p.seat_id
	JOIN users u ON u.id = p.user_id`

func scanPurchaseDetail(row pgx.Row) (*domain.PurchaseDetail, error) {
	d := &domain.PurchaseDetail{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.ZoneID, &d.EventID, &d.SeatID, &d.Quantity,
		&d.ExtraPrice, &d.TotalPrice, &d.PaymentMethod, &d.CreatedAt,
		&d.EventTitle, &d.EventStartsAt, &d.EventLocation,
		&d.ZoneName, &d.RowNumber, &d.SeatNumber,
		&d.UserName, &d.UserEmail,
		&d.CheckedIn,
	)
	return d, err
}

// GetDetail retrieves a purchase with the data printed on its ticket
func (r *PostgresPurchaseRepository) GetDetail(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	query := `SELECT ` + purchaseDetailColumns + purchaseDetailJoins + ` WHERE p.id = $1`

	d, err := scanPurchaseDetail(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return d, nil
}

// ListByUser lists a user's purchases, newest first
func (r *PostgresPurchaseRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.PurchaseDetail, error) {
	query := `SELECT ` + purchaseDetailColumns + purchaseDetailJoins + `
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var out []*domain.PurchaseDetail
	for rows.Next() {
		d, err := scanPurchaseDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purchases: %w", err)
	}
	return out, nil
}

var _ PurchaseRepository = (*PostgresPurchaseRepository)(nil)
