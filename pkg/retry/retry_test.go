package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestNew_NormalizesZeroValues(t *testing.T) {
	r := New(&Config{JitterFactor: 3})

	assert.Equal(t, time.Second, r.config.InitialInterval)
	assert.Equal(t, 30*time.Second, r.config.MaxInterval)
	assert.Equal(t, 2.0, r.config.Multiplier)
	assert.Equal(t, 1.0, r.config.JitterFactor)
}

func TestNew_DoesNotMutateCallerConfig(t *testing.T) {
	cfg := &Config{}
	New(cfg)
	assert.Zero(t, cfg.InitialInterval)
}

func TestRetrier_Do(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		permanent    bool
		wantAttempts int
		wantErr      bool
	}{
		{name: "first try", maxRetries: 3, failures: 0, wantAttempts: 1},
		{name: "succeeds after retries", maxRetries: 3, failures: 2, wantAttempts: 3},
		{name: "exhausts retries", maxRetries: 2, failures: 10, wantAttempts: 3, wantErr: true},
		{name: "permanent stops early", maxRetries: 5, failures: 10, permanent: true, wantAttempts: 1, wantErr: true},
		{name: "no retries", maxRetries: 0, failures: 1, wantAttempts: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					if tt.permanent {
						return Permanent(errBoom)
					}
					return errBoom
				}
				return nil
			}

			attempts, err := New(fastConfig(tt.maxRetries)).Do(context.Background(), op, nil)

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fastConfig(3)).Do(ctx, func(ctx context.Context) error { return nil }, nil)
	assert.ErrorIs(t, err, ErrContextCanceled)
}

func TestRetrier_Do_CanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	cfg := &Config{MaxRetries: 10, InitialInterval: time.Second, MaxInterval: time.Second, Multiplier: 1}
	start := time.Now()
	_, err := New(cfg).Do(ctx, func(ctx context.Context) error { return errors.New("down") }, nil)

	assert.ErrorIs(t, err, ErrContextCanceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRetrier_Do_Notify(t *testing.T) {
	var seen []int
	notify := func(attempt int, err error, wait time.Duration) {
		seen = append(seen, attempt)
		assert.Greater(t, wait, time.Duration(0))
	}

	calls := 0
	_, err := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, notify)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestBackoff_Exponential(t *testing.T) {
	r := New(&Config{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2})

	assert.Equal(t, 100*time.Millisecond, r.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, r.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, r.Backoff(2))
	assert.Equal(t, time.Second, r.Backoff(10))
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	r := New(&Config{InitialInterval: 100 * time.Millisecond, MaxInterval: time.Second, Multiplier: 2, JitterFactor: 0.1})

	for i := 0; i < 50; i++ {
		d := r.Backoff(0)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	base := errors.New("bad input")
	err := Permanent(base)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestDo_Shortcut(t *testing.T) {
	err := Do(context.Background(), fastConfig(1), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}
