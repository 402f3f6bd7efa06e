package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"wordmate-subscription/internal/infra/metrics"
	"wordmate-subscription/internal/usecase"
)

// ExpiryWorker periodically expires stale pending orders and overdue unused
// codes. Lazy expiry in the redemption path covers codes that get attempted;
// this sweep covers the ones that never are.
type ExpiryWorker struct {
	interval   time.Duration
	pendingTTL time.Duration
	orderUC    usecase.OrderUseCase
	log        *zerolog.Logger
}

func NewExpiryWorker(interval, pendingTTL time.Duration, orderUC usecase.OrderUseCase, logger *zerolog.Logger) *ExpiryWorker {
	wLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:   interval,
		pendingTTL: pendingTTL,
		orderUC:    orderUC,
		log:        &wLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			orders, codes, err := w.orderUC.ExpireStale(runCtx, w.pendingTTL)
			cancel()
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep error")
				continue
			}
			if orders > 0 {
				for i := 0; i < orders; i++ {
					metrics.IncOrder("expired")
				}
				w.log.Info().Int("count", orders).Msg("stale pending orders expired")
			}
			if codes > 0 {
				w.log.Info().Int("count", codes).Msg("overdue codes expired")
			}
		}
	}
}
