package worker

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/event-ticketing/pkg/config"
	"github.com/prohmpiriya/event-ticketing/pkg/kafka"
	"github.com/prohmpiriya/event-ticketing/pkg/retry"
)

// OutboxConfigFrom maps application config onto the worker config; zero values keep the defaults
func OutboxConfigFrom(cfg config.OutboxConfig) *OutboxWorkerConfig {
	wc := DefaultOutboxWorkerConfig()
	if cfg.PollInterval > 0 {
		wc.PollInterval = cfg.PollInterval
	}
	if cfg.BatchSize > 0 {
		wc.BatchSize = cfg.BatchSize
	}
	if cfg.RetryInterval > 0 {
		wc.RetryInterval = cfg.RetryInterval
	}
	if cfg.CleanupInterval > 0 {
		wc.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.CleanupRetentionDays > 0 {
		wc.CleanupRetentionDays = cfg.CleanupRetentionDays
	}
	return wc
}

// Publisher bundles the outbox producer and its dead letter sink
type Publisher struct {
	Producer MessageProducer
	DLQ      retry.DeadLetterPublisher
	close    func()
}

// Close releases the Kafka client, if any
func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

// NewPublisher connects to Kafka when enabled; otherwise messages are only logged
func NewPublisher(ctx context.Context, cfg *config.Config, source string) (*Publisher, error) {
	if !cfg.Kafka.Enabled {
		return &Publisher{Producer: LogProducer{}, DLQ: retry.NoOpDeadLetterPublisher{}}, nil
	}
	if err := cfg.ValidateKafka(); err != nil {
		return nil, err
	}

	pc := kafka.DefaultProducerConfig()
	pc.Brokers = cfg.Kafka.Brokers
	if cfg.Kafka.ClientID != "" {
		pc.ClientID = cfg.Kafka.ClientID
	}

	producer, err := kafka.NewProducer(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return &Publisher{
		Producer: producer,
		DLQ:      retry.NewKafkaDeadLetterPublisher(producer, cfg.Kafka.DLQTopic, source),
		close:    producer.Close,
	}, nil
}
