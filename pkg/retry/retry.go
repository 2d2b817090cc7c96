package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrContextCanceled is returned when ctx ends between attempts
var ErrContextCanceled = errors.New("context canceled during retry")

// Config controls exponential backoff with jitter
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor in [0,1]; 0.1 means ±10%
	JitterFactor float64
}

// DefaultConfig backs off 1s, 2s, 4s ... capped at 30s
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// ConnectConfig is tuned for dependency start-up (database, cache, broker)
func ConnectConfig(maxRetries int, interval time.Duration) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: interval,
		MaxInterval:     interval * 8,
		Multiplier:      2.0,
	}
}

func (c *Config) normalize() *Config {
	out := *c
	if out.InitialInterval <= 0 {
		out.InitialInterval = time.Second
	}
	if out.MaxInterval <= 0 {
		out.MaxInterval = 30 * time.Second
	}
	if out.Multiplier <= 0 {
		out.Multiplier = 2.0
	}
	out.JitterFactor = math.Max(0, math.Min(1, out.JitterFactor))
	if out.MaxRetries < 0 {
		out.MaxRetries = 0
	}
	return &out
}

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

// Operation is the unit of work being retried
type Operation func(ctx context.Context) error

// Notify is called after a failed attempt, before sleeping
type Notify func(attempt int, err error, wait time.Duration)

// Retrier runs operations with backoff
type Retrier struct {
	config *Config
}

// New creates a Retrier; nil config means DefaultConfig
func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Retrier{config: config.normalize()}
}

// Do runs op until it succeeds, returns a permanent error, or retries run out.
// The returned attempt count includes the first call.
func (r *Retrier) Do(ctx context.Context, op Operation, notify Notify) (int, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, fmt.Errorf("%w: %w", ErrContextCanceled, errors.Join(err, lastErr))
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return attempt + 1, nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return attempt + 1, perm.Err
		}

		if attempt == r.config.MaxRetries {
			break
		}

		wait := r.Backoff(attempt)
		if notify != nil {
			notify(attempt+1, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt + 1, fmt.Errorf("%w: %w", ErrContextCanceled, lastErr)
		case <-timer.C:
		}
	}

	return r.config.MaxRetries + 1, fmt.Errorf("giving up after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

// Backoff returns the wait before retry number attempt+1
func (r *Retrier) Backoff(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if interval <= 0 {
		interval = float64(r.config.InitialInterval)
	}

	return time.Duration(interval)
}

// Do is a shortcut for New(config).Do without notifications
func Do(ctx context.Context, config *Config, op Operation) error {
	_, err := New(config).Do(ctx, op, nil)
	return err
}
