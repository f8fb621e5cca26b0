// Package digest keeps the "latest releases" digest served by the latest command.
package digest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/models"
)

const defaultInterval = 30 * time.Minute

// Source produces the current list of latest releases.
type Source interface {
	LatestReleases(ctx context.Context) ([]models.LatestEntry, error)
}

// Refresher owns the in-memory digest and refreshes it on a ticker. Readers
// always see the last successful snapshot.
type Refresher struct {
	source   Source
	interval time.Duration
	logger   zerolog.Logger
	snapshot atomic.Pointer[models.LatestDigest]
	now      func() time.Time
}

// NewRefresher creates a refresher. A non-positive interval uses 30 minutes.
func NewRefresher(source Source, interval time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Refresher{source: source, interval: interval, logger: logger, now: time.Now}
}

// Run refreshes once immediately, then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	_ = r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Digest refresher stopped")
			return
		case <-ticker.C:
			_ = r.Refresh(ctx)
		}
	}
}

// Refresh fetches the latest releases and replaces the snapshot. On failure the
// previous snapshot is kept.
func (r *Refresher) Refresh(ctx context.Context) error {
	entries, err := r.source.LatestReleases(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Str("op", "latest releases").Msg("Digest refresh failed, keeping previous snapshot")
		return err
	}

	r.snapshot.Store(&models.LatestDigest{Entries: entries, RefreshedAt: r.now().UTC()})
	r.logger.Debug().Int("entries", len(entries)).Msg("Digest refreshed")
	return nil
}

// Latest returns the current snapshot, or false before the first successful refresh.
func (r *Refresher) Latest() (models.LatestDigest, bool) {
	current := r.snapshot.Load()
	if current == nil {
		return models.LatestDigest{}, false
	}
	return *current, true
}
