package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/apperr"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/repository"
)

// ExpireDue expires every PENDING or ACCEPTED question whose deadline has
// passed, one transaction per order. Orders that moved on concurrently are
// skipped. It returns how many orders were expired.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	candidates, err := repository.NewOrderRepository(s.db).
		ListOverdueQuestions(ctx, now, domain.StatusPending, domain.StatusAccepted)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, o := range candidates {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		_, err := s.Apply(ctx, Command{
			OrderID: o.ID,
			Kind:    domain.KindQuestion,
			Action:  domain.ActionExpire,
			Actor:   SystemActor(),
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, apperr.ErrInvalidState):
		default:
			s.log.Warn("expire order failed", zap.Int64(logger.FieldOrderID, o.ID), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return expired, errors.Join(errs...)
}

// Sweeper runs ExpireDue on a fixed interval.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, log: logger.OrNop(log)}
}

// Start launches the sweep loop. It stops when ctx is cancelled or the
// returned channel is closed.
func (w *Sweeper) Start(ctx context.Context) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.RunOnce(ctx)
			case <-stopCh:
				w.log.Info("expiry sweeper stopped")
				return
			case <-ctx.Done():
				w.log.Info("expiry sweeper stopped (context done)")
				return
			}
		}
	}()

	w.log.Info("expiry sweeper started", zap.Duration("interval", w.interval))
	return stopCh
}

func (w *Sweeper) RunOnce(ctx context.Context) int {
	started := time.Now()
	n, err := w.svc.ExpireDue(ctx)
	if err != nil {
		w.log.Error("expiry sweep failed", zap.Error(err), zap.Int("expired", n))
		return n
	}
	if n > 0 {
		w.log.Info("expiry sweep completed", zap.Int("expired", n), zap.Duration("took", time.Since(started)))
	}
	return n
}
