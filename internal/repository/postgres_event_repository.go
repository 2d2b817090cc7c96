package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	db database.DBTX
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(db database.DBTX) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// eventColumns uses COALESCE for nullable text columns to avoid scan errors
const eventColumns = `e.id, e.category_id, COALESCE(c.name, ''), e.title,
	COALESCE(e.description, ''), e.starts_at, e.base_price, e.capacity, e.is_virtual,
	COALESCE(e.url, ''), COALESCE(e.stream_url, ''), COALESCE(e.virtual_platform, ''),
	COALESCE(e.location, ''), e.latitude, e.longitude, COALESCE(e.image_path, ''),
	e.is_featured, COALESCE(e.organizers, ''), e.is_active, e.created_at, e.updated_at`

const eventFrom = ` FROM events e LEFT JOIN categories c ON c.id = e.category_id`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.CategoryID, &e.CategoryName, &e.Title,
		&e.Description, &e.StartsAt, &e.BasePrice, &e.Capacity, &e.IsVirtual,
		&e.URL, &e.StreamURL, &e.VirtualPlatform,
		&e.Location, &e.Latitude, &e.Longitude, &e.ImagePath,
		&e.IsFeatured, &e.Organizers, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// ListActive lists active events with per-zone seat counts
func (r *PostgresEventRepository) ListActive(ctx context.Context, featuredOnly bool) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventFrom + ` WHERE e.is_active`
	if featuredOnly {
		query += ` AND e.is_featured`
	}
	query += ` ORDER BY e.starts_at ASC, e.id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var (
		events []*domain.Event
		ids    []int64
	)
	byID := make(map[int64]*domain.Event)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	if len(events) == 0 {
		return events, nil
	}

	zones, err := r.zoneSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, z := range zones {
		if e, ok := byID[z.EventID]; ok {
			e.Zones = append(e.Zones, z)
		}
	}
	return events, nil
}

func (r *PostgresEventRepository) zoneSummaries(ctx context.Context, eventIDs []int64) ([]*domain.Zone, error) {
	rows, err := r.db.Query(ctx, `
		SELECT z.id, z.event_id, z.name, z.capacity, z.extra_price,
			COUNT(s.id) FILTER (WHERE s.status = 'available'),
			COUNT(s.id) FILTER (WHERE s.status = 'reserved'),
			COUNT(s.id) FILTER (WHERE s.status = 'sold')
		FROM zones z
		LEFT JOIN seats s ON s.zone_id = z.id AND s.is_active
		WHERE z.event_id = ANY($1) AND z.is_active
		GROUP BY z.id
		ORDER BY z.event_id, z.id`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var zones []*domain.Zone
	for rows.Next() {
		z := &domain.Zone{IsActive: true}
		if err := rows.Scan(&z.ID, &z.EventID, &z.Name, &z.Capacity, &z.ExtraPrice,
			&z.AvailableSeats, &z.ReservedSeats, &z.SoldSeats); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read zones: %w", err)
	}
	return zones, nil
}

// GetByID retrieves an active event with zones and seats
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+eventFrom+` WHERE e.id = $1 AND e.is_active`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	zones, err := r.zoneSummaries(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	event.Zones = zones

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.zone_id, s.row_number, s.seat_number, s.status
		FROM seats s
		JOIN zones z ON z.id = s.zone_id
		WHERE z.event_id = $1 AND z.is_active AND s.is_active
		ORDER BY s.zone_id, s.row_number, s.seat_number`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	defer rows.Close()

	byZone := make(map[int64]*domain.Zone, len(zones))
	for _, z := range zones {
		byZone[z.ID] = z
	}
	for rows.Next() {
		s := &domain.Seat{IsActive: true}
		var status string
		if err := rows.Scan(&s.ID, &s.ZoneID, &s.RowNumber, &s.SeatNumber, &status); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		s.Status = domain.SeatStatus(status)
		if z, ok := byZone[s.ZoneID]; ok {
			z.Seats = append(z.Seats, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seats: %w", err)
	}

	return event, nil
}

// Create inserts the event, its zones and their seats in one transaction
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO events (
			category_id, title, description, starts_at, base_price, capacity,
			is_virtual, url, stream_url, virtual_platform, location,
			latitude, longitude, image_path, is_featured, organizers
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`,
		event.CategoryID, event.Title, event.Description, event.StartsAt, event.BasePrice, event.Capacity,
		event.IsVirtual, event.URL, event.StreamURL, event.VirtualPlatform, event.Location,
		event.Latitude, event.Longitude, event.ImagePath, event.IsFeatured, event.Organizers,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	event.IsActive = true

	created, err := insertZones(ctx, tx, event.ID, zones)
	if err != nil {
		return err
	}
	event.Zones = created

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}

// Update rewrites event fields. An empty ImagePath keeps the stored image.
// Replaced zones and seats are deactivated, not deleted, so purchases keep their references.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event, zones []domain.ZoneLayout, replaceZones bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE events SET
			category_id = $2, title = $3, description = $4, starts_at = $5,
			base_price = $6, capacity = $7, is_virtual = $8, url = $9,
			stream_url = $10, virtual_platform = $11, location = $12,
			latitude = $13, longitude = $14,
			image_path = COALESCE(NULLIF($15::text, ''), image_path),
			is_featured = $16, organizers = $17, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING COALESCE(image_path, ''), created_at, updated_at`,
		event.ID, event.CategoryID, event.Title, event.Description, event.StartsAt,
		event.BasePrice, event.Capacity, event.IsVirtual, event.URL,
		event.StreamURL, event.VirtualPlatform, event.Location,
		event.Latitude, event.Longitude,
		event.ImagePath,
		event.IsFeatured, event.Organizers,
	).Scan(&event.ImagePath, &event.CreatedAt, &event.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	event.IsActive = true

	if replaceZones {
		if err := deactivateZones(ctx, tx, event.ID); err != nil {
			return err
		}
		created, err := insertZones(ctx, tx, event.ID, zones)
		if err != nil {
			return err
		}
		event.Zones = created
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}

// SoftDelete deactivates the event, its zones and their seats
func (r *PostgresEventRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE events SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	if err := deactivateZones(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}

func deactivateZones(ctx context.Context, tx pgx.Tx, eventID int64) error {
	if _, err := tx.Exec(ctx, `
		UPDATE seats SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND zone_id IN (SELECT id FROM zones WHERE event_id = $1 AND is_active)`,
		eventID); err != nil {
		return fmt.Errorf("failed to deactivate seats: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE zones SET is_active = FALSE WHERE event_id = $1 AND is_active`, eventID); err != nil {
		return fmt.Errorf("failed to deactivate zones: %w", err)
	}
	return nil
}

var seatCopyColumns = []string{"zone_id", "row_number", "seat_number", "status"}

func insertZones(ctx context.Context, tx pgx.Tx, eventID int64, layouts []domain.ZoneLayout) ([]*domain.Zone, error) {
	zones := make([]*domain.Zone, 0, len(layouts))

	for _, layout := range layouts {
		z := &domain.Zone{
			EventID:    eventID,
			Name:       layout.Name,
			Capacity:   layout.Capacity,
			ExtraPrice: layout.ExtraPrice,
			IsActive:   true,
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO zones (event_id, name, capacity, extra_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			eventID, z.Name, z.Capacity, z.ExtraPrice,
		).Scan(&z.ID); err != nil {
			return nil, fmt.Errorf("failed to create zone %q: %w", layout.Name, err)
		}

		var seatRows [][]any
		for _, row := range layout.Rows {
			for n := 1; n <= row.Seats; n++ {
				seatRows = append(seatRows, []any{z.ID, row.Number, n, string(domain.SeatStatusAvailable)})
			}
		}
		if len(seatRows) > 0 {
			copied, err := tx.CopyFrom(ctx, pgx.Identifier{"seats"}, seatCopyColumns, pgx.CopyFromRows(seatRows))
			if err != nil {
				return nil, fmt.Errorf("failed to create seats for zone %q: %w", layout.Name, err)
			}
			z.AvailableSeats = int(copied)
		}

		zones = append(zones, z)
	}
	return zones, nil
}

// ListCategories lists event categories by name
func (r *PostgresEventRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

var _ EventRepository = (*PostgresEventRepository)(nil)
