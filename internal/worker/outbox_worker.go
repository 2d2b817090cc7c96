package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/domain"
	"github.com/prohmpiriya/event-ticketing/internal/repository"
	"github.com/prohmpiriya/event-ticketing/pkg/kafka"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
	"github.com/prohmpiriya/event-ticketing/pkg/retry"
)

// MessageProducer is satisfied by kafka.Producer
type MessageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
}

// OutboxWorkerConfig contains configuration for the outbox worker
type OutboxWorkerConfig struct {
	// PollInterval is the interval between polling for pending messages
	PollInterval time.Duration
	// BatchSize is the number of messages claimed per poll
	BatchSize int
	// RetryInterval is the interval between retrying failed messages
	RetryInterval time.Duration
	// CleanupInterval is the interval between cleanup of old published messages
	CleanupInterval time.Duration
	// CleanupRetentionDays is the number of days to retain published messages
	CleanupRetentionDays int
}

// DefaultOutboxWorkerConfig returns default configuration
func DefaultOutboxWorkerConfig() *OutboxWorkerConfig {
	return &OutboxWorkerConfig{
		PollInterval:         100 * time.Millisecond,
		BatchSize:            100,
		RetryInterval:        5 * time.Second,
		CleanupInterval:      time.Hour,
		CleanupRetentionDays: 7,
	}
}

// OutboxWorker relays committed outbox rows (purchases, check-ins, seat
// changes) to Kafka. Rows are claimed with SKIP LOCKED, so several workers
// may run against the same table.
type OutboxWorker struct {
	outboxRepo repository.OutboxRepository
	producer   MessageProducer
	dlq        retry.DeadLetterPublisher
	config     *OutboxWorkerConfig
	log        *logger.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewOutboxWorker creates a new outbox worker; dlq may be nil
func NewOutboxWorker(
	outboxRepo repository.OutboxRepository,
	producer MessageProducer,
	dlq retry.DeadLetterPublisher,
	config *OutboxWorkerConfig,
) *OutboxWorker {
	if config == nil {
		config = DefaultOutboxWorkerConfig()
	}
	if dlq == nil {
		dlq = retry.NoOpDeadLetterPublisher{}
	}

	return &OutboxWorker{
		outboxRepo: outboxRepo,
		producer:   producer,
		dlq:        dlq,
		config:     config,
		log:        logger.Get().With(zap.String("worker", "outbox")),
		stopCh:     make(chan struct{}),
	}
}

// Start launches the poll, retry and cleanup loops
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting outbox worker",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(3)
	go w.loop(ctx, w.config.PollInterval, func(ctx context.Context) { w.processBatch(ctx, false) })
	go w.loop(ctx, w.config.RetryInterval, func(ctx context.Context) { w.processBatch(ctx, true) })
	go w.loop(ctx, w.config.CleanupInterval, w.cleanup)

	return nil
}

// Stop stops the loops and waits for the current batch to finish
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping outbox worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Outbox worker stopped")
}

func (w *OutboxWorker) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// processBatch claims one batch; retryFailed selects failed rows with attempts left
func (w *OutboxWorker) processBatch(ctx context.Context, retryFailed bool) int {
	n, err := w.outboxRepo.ProcessBatch(ctx, w.config.BatchSize, retryFailed, w.handle)
	if err != nil {
		w.log.Error("Failed to process outbox batch", zap.Bool("retry", retryFailed), zap.Error(err))
		return 0
	}
	if n > 0 {
		w.log.Debug("Outbox batch processed", zap.Bool("retry", retryFailed), zap.Int("messages", n))
	}
	return n
}

// handle publishes one message. A message failing its last attempt is copied
// to the dead letter topic; the row itself stays failed for inspection.
func (w *OutboxWorker) handle(ctx context.Context, msg *domain.OutboxMessage) error {
	err := w.publish(ctx, msg)
	if err == nil {
		return nil
	}

	w.log.Warn("Failed to publish outbox message",
		zap.String("id", msg.ID),
		zap.String("event_type", msg.EventType),
		zap.Int("attempt", msg.RetryCount+1),
		zap.Int("max_retries", msg.MaxRetries),
		zap.Error(err),
	)

	if msg.IsLastAttempt() {
		dl := &retry.DeadLetter{
			ID:            msg.ID,
			OriginalTopic: msg.Topic,
			Key:           msg.PartitionKey,
			EventType:     msg.EventType,
			Payload:       json.RawMessage(msg.Payload),
			Headers:       headersFor(msg),
			Error:         err.Error(),
			Attempts:      msg.RetryCount + 1,
			CreatedAt:     msg.CreatedAt,
		}
		if dlqErr := w.dlq.PublishDeadLetter(ctx, dl); dlqErr != nil {
			w.log.Error("Failed to publish dead letter", zap.String("id", msg.ID), zap.Error(dlqErr))
		}
	}
	return err
}

func (w *OutboxWorker) publish(ctx context.Context, msg *domain.OutboxMessage) error {
	return w.producer.Produce(ctx, &kafka.Message{
		Topic:     msg.Topic,
		Key:       []byte(msg.PartitionKey),
		Value:     msg.Payload,
		Headers:   headersFor(msg),
		Timestamp: time.Now(),
	})
}

func headersFor(msg *domain.OutboxMessage) map[string]string {
	return map[string]string{
		"event_type":     msg.EventType,
		"aggregate_type": msg.AggregateType,
		"aggregate_id":   msg.AggregateID,
		"content_type":   "application/json",
		"source":         "outbox-worker",
	}
}

func (w *OutboxWorker) cleanup(ctx context.Context) {
	deleted, err := w.outboxRepo.DeletePublished(ctx, w.config.CleanupRetentionDays)
	if err != nil {
		w.log.Error("Failed to clean up outbox", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.log.Info("Cleaned up published outbox messages", zap.Int64("deleted", deleted))
	}
}

// LogProducer logs messages instead of publishing them; used when Kafka is disabled
type LogProducer struct {
	Log *logger.Logger
}

// Produce logs msg and reports success
func (p LogProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	l := p.Log
	if l == nil {
		l = logger.Get()
	}
	l.Debug("Outbox message (kafka disabled)",
		zap.String("topic", msg.Topic),
		zap.String("key", string(msg.Key)),
		zap.String("event_type", msg.Headers["event_type"]),
		zap.ByteString("payload", msg.Value),
	)
	return nil
}
