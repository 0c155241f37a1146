package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/feiralabs/feira/internal/identity/store"
)

// Housekeeper periodically purges refresh sessions that expired longer than
// Retention ago. Auth operations never delete session rows, so without this
// worker the table would only ever grow; the retention window keeps the
// revocation audit trail around well past any replay window before the rows
// finally go.
type Housekeeper struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewHousekeeper(st store.Store, logger *slog.Logger, interval, retention time.Duration) *Housekeeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Housekeeper{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut
// down.
func (h *Housekeeper) Start() {
	go h.run()
	h.Logger.Info("housekeeper started", "interval", h.Interval, "retention", h.Retention)
}

// Stop shuts the worker down, blocking until any in-flight sweep finishes.
func (h *Housekeeper) Stop() {
	close(h.stopCh)
	<-h.doneCh
	h.Logger.Info("housekeeper stopped")
}

func (h *Housekeeper) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	h.sweep()

	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stopCh:
			return
		}
	}
}

func (h *Housekeeper) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-h.Retention)

	purged, err := h.Store.RefreshSessions().PurgeExpiredBefore(ctx, cutoff)
	if err != nil {
		h.Logger.Error("refresh session purge failed", "error", err)
		return
	}
	if purged > 0 {
		h.Logger.Info("purged stale refresh sessions", "count", purged, "cutoff", cutoff)
	}
}
