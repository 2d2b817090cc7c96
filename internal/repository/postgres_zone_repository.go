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

// PostgresZoneRepository implements ZoneRepository using PostgreSQL
type PostgresZoneRepository struct {
	db database.DBTX
}

// NewPostgresZoneRepository creates a new PostgresZoneRepository
func NewPostgresZoneRepository(db database.DBTX) *PostgresZoneRepository {
	return &PostgresZoneRepository{db: db}
}

const zoneAvailabilitySQL = `
	SELECT z.id, z.event_id, z.capacity,
		COUNT(s.id) FILTER (WHERE s.status = 'available'),
		COUNT(s.id) FILTER (WHERE s.status = 'reserved'),
		COUNT(s.id) FILTER (WHERE s.status = 'sold')
	FROM zones z
	LEFT JOIN seats s ON s.zone_id = z.id AND s.is_active
	WHERE z.is_active`

func scanAvailability(row pgx.Row) (*domain.ZoneAvailability, error) {
	a := &domain.ZoneAvailability{}
	if err := row.Scan(&a.ZoneID, &a.EventID, &a.Capacity, &a.Available, &a.Reserved, &a.Sold); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now()
	return a, nil
}

// GetAvailability returns availability of one active zone
func (r *PostgresZoneRepository) GetAvailability(ctx context.Context, zoneID int64) (*domain.ZoneAvailability, error) {
	a, err := scanAvailability(r.db.QueryRow(ctx, zoneAvailabilitySQL+` AND z.id = $1 GROUP BY z.id`, zoneID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrZoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone availability: %w", err)
	}
	return a, nil
}

// ListActiveAvailability returns availability of all active zones of active events
func (r *PostgresZoneRepository) ListActiveAvailability(ctx context.Context) ([]*domain.ZoneAvailability, error) {
	rows, err := r.db.Query(ctx, zoneAvailabilitySQL+`
		AND z.event_id IN (SELECT id FROM events WHERE is_active)
		GROUP BY z.id
		ORDER BY z.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone availability: %w", err)
	}
	defer rows.Close()

	var out []*domain.ZoneAvailability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone availability: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read zone availability: %w", err)
	}
	return out, nil
}

var _ ZoneRepository = (*PostgresZoneRepository)(nil)
