// Package sweeper runs the periodic sale sweep that keeps sale statuses and
// effective product prices in step with the clock.
package sweeper

import (
	"context"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// LeaseKey names the lease shared by all replicas.
const LeaseKey = "storefront:sale-sweep"

// SaleSweeper performs one sweep.
type SaleSweeper interface {
	Sweep(ctx context.Context) (*model.SweepResult, error)
}

// Sweeper calls SaleSweeper on a fixed interval.
type Sweeper struct {
	sales    SaleSweeper
	locker   Locker
	interval time.Duration
	leaseTTL time.Duration
	logger   zerolog.Logger
}

// New creates a sweeper from configuration.
func New(sales SaleSweeper, locker Locker, cfg config.SweeperConfig, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		sales:    sales,
		locker:   locker,
		interval: cfg.SweepInterval(),
		leaseTTL: cfg.LockDuration(),
		logger:   logger.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("sale sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("sale sweep failed")
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sale sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep under the lease. It returns a nil result
// when another replica holds the lease.
func (s *Sweeper) RunOnce(ctx context.Context) (*model.SweepResult, error) {
	release, acquired, err := s.locker.TryLock(ctx, LeaseKey, s.leaseTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		s.logger.Debug().Msg("sweep lease held elsewhere, skipping")
		return nil, nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to release sweep lease")
		}
	}()

	return s.sales.Sweep(ctx)
}
