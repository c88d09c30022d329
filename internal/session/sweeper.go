package session

import (
	"context"
	"time"

	"github.com/playmatatu/fairway/internal/logger"
)

// StartSweeper drops idle sessions from memory every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	log := logger.WithComponent("sweeper")
	if interval <= 0 || maxAge <= 0 {
		log.Warn("sweep interval or session TTL not set; sweeper not started")
		return
	}

	log.WithField("interval", interval.String()).Info("session sweeper started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("session sweeper stopping")
				return
			case <-ticker.C:
				if n := m.SweepExpired(maxAge); n > 0 {
					log.WithField("removed", n).Info("swept idle bag sessions")
				}
			}
		}
	}()
}
