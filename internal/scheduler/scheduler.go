package scheduler

import (
	"context"
	"log/slog"
	"time"

	"fact_checker/internal/domain"
)

// Refresher recomputes the source ranking snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.RankingSnapshot, error)
}

// Scheduler keeps the ranking snapshot warm. The leaderboard only needs
// eventual consistency, so a periodic refresh is enough.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

func NewScheduler(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("ranking scheduler started", "interval", s.interval)

	s.runRefresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("ranking scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := s.refresher.Refresh(refreshCtx); err != nil {
		s.logger.Error("ranking refresh failed", "error", err)
	}
}
