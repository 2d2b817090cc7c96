package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/pkg/database"
)

// PostgresOutboxRepository implements OutboxRepository using PostgreSQL
type PostgresOutboxRepository struct {
	db    database.DBTX
	topic string
}

// NewPostgresOutboxRepository creates an outbox repository publishing to topic
func NewPostgresOutboxRepository(db database.DBTX, topic string) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{db: db, topic: topic}
}

const insertOutboxSQL = `
	INSERT INTO outbox (
		id, aggregate_type, aggregate_id, event_type,
		payload, topic, partition_key, status,
		retry_count, max_retries, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// EnqueueTx writes a pending outbox message in tx
func (r *PostgresOutboxRepository) EnqueueTx(ctx context.Context, tx pgx.Tx, aggregateType string, aggregateID int64, eventType string, payload interface{}) error {
	msg, err := domain.NewOutboxMessage(aggregateType, aggregateID, eventType, r.topic, payload)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	msg.ID = uuid.New().String()

	_, err = tx.Exec(ctx, insertOutboxSQL,
		msg.ID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.Payload,
		msg.Topic,
		msg.PartitionKey,
		string(msg.Status),
		msg.RetryCount,
		msg.MaxRetries,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message in transaction: %w", err)
	}
	return nil
}

const selectPendingOutboxSQL = `
	SELECT id, aggregate_type, aggregate_id, event_type, payload, topic,
		COALESCE(partition_key, ''), status, retry_count, max_retries,
		COALESCE(last_error, ''), created_at
	FROM outbox
	WHERE status = 'pending'
	ORDER BY created_at ASC
	LIMIT $1
	FOR UPDATE SKIP LOCKED`

const selectRetryableOutboxSQL = `
	SELECT id, aggregate_type, aggregate_id, event_type, payload, topic,
		COALESCE(partition_key, ''), status, retry_count, max_retries,
		COALESCE(last_error, ''), created_at
	FROM outbox
	WHERE status = 'failed' AND retry_count < max_retries
	ORDER BY created_at ASC
	LIMIT $1
	FOR UPDATE SKIP LOCKED`

// ProcessBatch claims a batch in one transaction so concurrent relays never publish the same row
func (r *PostgresOutboxRepository) ProcessBatch(ctx context.Context, limit int, retryFailed bool, handle OutboxHandler) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := selectPendingOutboxSQL
	if retryFailed {
		query = selectRetryableOutboxSQL
	}

	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to claim outbox messages: %w", err)
	}
	messages, err := scanOutboxMessages(rows)
	if err != nil {
		return 0, err
	}

	for _, msg := range messages {
		if herr := handle(ctx, msg); herr != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE outbox SET status = 'failed', last_error = $2, retry_count = retry_count + 1 WHERE id = $1`,
				msg.ID, herr.Error(),
			); err != nil {
				return 0, fmt.Errorf("failed to mark message as failed: %w", err)
			}
			continue
		}

		if _, err := tx.Exec(ctx,
			`UPDATE outbox SET status = 'published', published_at = $2 WHERE id = $1`,
			msg.ID, time.Now(),
		); err != nil {
			return 0, fmt.Errorf("failed to mark message as published: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit outbox batch: %w", err)
	}
	return len(messages), nil
}

// DeletePublished deletes old published messages
func (r *PostgresOutboxRepository) DeletePublished(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	tag, err := r.db.Exec(ctx, `DELETE FROM outbox WHERE status = 'published' AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete published messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanOutboxMessages(rows pgx.Rows) ([]*domain.OutboxMessage, error) {
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg := &domain.OutboxMessage{}
		var status string
		if err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
			&msg.Topic,
			&msg.PartitionKey,
			&status,
			&msg.RetryCount,
			&msg.MaxRetries,
			&msg.LastError,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		msg.Status = domain.OutboxStatus(status)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return messages, nil
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)
