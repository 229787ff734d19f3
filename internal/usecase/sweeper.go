package usecase

import (
	"context"
	"time"

	"movie-ticket/internal/data/repository"
	"movie-ticket/pkg/utils"

	"go.uber.org/zap"
)

// Sweeper periodically expires stale pending bookings and flips started
// showtimes to expired, so seats held by abandoned checkouts return to
// the pool even when nobody books that showtime again.
type Sweeper struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewSweeper(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Sweeper {
	return &Sweeper{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "sweeper")),
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Booking.SweepInterval)
	defer ticker.Stop()

	s.log.Info("sweeper started", zap.Duration("interval", s.config.Booking.SweepInterval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := s.repo.Booking.ExpireStale(sweepCtx, s.config.Booking.HoldTTL)
	if err != nil {
		s.log.Error("failed to expire stale bookings", zap.Error(err))
	} else if expired > 0 {
		s.log.Info("expired stale bookings", zap.Int64("count", expired))
	}

	started, err := s.repo.ShowTime.ExpireStarted(sweepCtx)
	if err != nil {
		s.log.Error("failed to expire started showtimes", zap.Error(err))
	} else if started > 0 {
		s.log.Info("expired started showtimes", zap.Int64("count", started))
	}

	removed, err := s.repo.Session.DeleteExpired(sweepCtx)
	if err != nil {
		s.log.Error("failed to delete expired sessions", zap.Error(err))
	} else if removed > 0 {
		s.log.Debug("deleted expired sessions", zap.Int64("count", removed))
	}
}
