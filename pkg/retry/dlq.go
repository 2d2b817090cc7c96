package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DeadLetter is a message that could not be delivered after all retries
type DeadLetter struct {
	ID            string            `json:"id"`
	OriginalTopic string            `json:"original_topic"`
	Key           string            `json:"key"`
	EventType     string            `json:"event_type"`
	Payload       json.RawMessage   `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Error         string            `json:"error"`
	Attempts      int               `json:"attempts"`
	CreatedAt     time.Time         `json:"created_at"`
	DeadAt        time.Time         `json:"dead_at"`
	Source        string            `json:"source"`
}

// DeadLetterPublisher publishes undeliverable messages
type DeadLetterPublisher interface {
	PublishDeadLetter(ctx context.Context, msg *DeadLetter) error
}

// JSONProducer is satisfied by kafka.Producer
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// KafkaDeadLetterPublisher writes dead letters to a single DLQ topic
type KafkaDeadLetterPublisher struct {
	producer JSONProducer
	topic    string
	source   string
}

// NewKafkaDeadLetterPublisher creates a publisher for the given DLQ topic
func NewKafkaDeadLetterPublisher(producer JSONProducer, topic, source string) *KafkaDeadLetterPublisher {
	return &KafkaDeadLetterPublisher{producer: producer, topic: topic, source: source}
}

// Topic returns the DLQ topic name
func (p *KafkaDeadLetterPublisher) Topic() string {
	return p.topic
}

// PublishDeadLetter stamps and publishes msg
func (p *KafkaDeadLetterPublisher) PublishDeadLetter(ctx context.Context, msg *DeadLetter) error {
	if msg == nil {
		return errors.New("dead letter cannot be nil")
	}

	msg.DeadAt = time.Now()
	msg.Source = p.source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.OriginalTopic,
		"event_type":     msg.EventType,
		"error":          msg.Error,
		"attempts":       strconv.Itoa(msg.Attempts),
		"source":         msg.Source,
	}
	for k, v := range msg.Headers {
		if _, exists := headers[k]; !exists {
			headers["original_"+k] = v
		}
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, msg.Key, msg, headers); err != nil {
		return fmt.Errorf("failed to publish dead letter %s: %w", msg.ID, err)
	}
	return nil
}

// NoOpDeadLetterPublisher drops dead letters; used when Kafka is disabled
type NoOpDeadLetterPublisher struct{}

// PublishDeadLetter does nothing
func (NoOpDeadLetterPublisher) PublishDeadLetter(context.Context, *DeadLetter) error {
	return nil
}
