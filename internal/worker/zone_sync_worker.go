package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/event-ticketing/internal/service"
	"github.com/prohmpiriya/event-ticketing/pkg/logger"
)

// ZoneSyncWorker periodically rewrites every active zone's availability into
// Redis, repairing entries missed by best-effort refreshes after commits.
type ZoneSyncWorker struct {
	syncer   service.ZoneSyncer
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewZoneSyncWorker creates a new ZoneSyncWorker
func NewZoneSyncWorker(syncer service.ZoneSyncer, interval time.Duration) *ZoneSyncWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ZoneSyncWorker{
		syncer:   syncer,
		interval: interval,
		log:      logger.Get().With(zap.String("worker", "zone_sync")),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sync immediately, then every interval, until ctx ends or Stop is called
func (w *ZoneSyncWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		w.syncOnce(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-ticker.C:
				w.syncOnce(ctx)
			}
		}
	}()
}

// Stop stops the worker and waits for it to exit
func (w *ZoneSyncWorker) Stop() {
	w.once.Do(func() { close(w.stopCh) })
	<-w.done
}

func (w *ZoneSyncWorker) syncOnce(ctx context.Context) {
	n, err := w.syncer.SyncAll(ctx)
	if err != nil {
		w.log.Warn("Zone availability sync failed", zap.Int("written", n), zap.Error(err))
	}
}
