package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/event-ticketing/pkg/config"
	"github.com/prohmpiriya/event-ticketing/pkg/retry"
)

func TestOutboxConfigFrom(t *testing.T) {
	wc := OutboxConfigFrom(config.OutboxConfig{BatchSize: 25, CleanupRetentionDays: 3})

	assert.Equal(t, 25, wc.BatchSize)
	assert.Equal(t, 3, wc.CleanupRetentionDays)
	assert.Equal(t, 100*time.Millisecond, wc.PollInterval)
	assert.Equal(t, 5*time.Second, wc.RetryInterval)
}

func TestNewPublisher_KafkaDisabled(t *testing.T) {
	p, err := NewPublisher(context.Background(), &config.Config{}, "test")
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, LogProducer{}, p.Producer)
	assert.IsType(t, retry.NoOpDeadLetterPublisher{}, p.DLQ)
}
