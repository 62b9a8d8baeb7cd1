package settler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
)

// sweepLoop time-boxes auctions independently of event delivery. It covers
// auctions that end with no winning bid and auctions whose winning-bid
// event was missed during listener downtime.
func (e *Engine) sweepLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.sweepTick(ctx); err != nil {
				e.logger.Error("Expiry sweep failed", zap.Error(err))
				metrics.ErrorsTotal.WithLabelValues("scheduler", "tick").Inc()
			}
		}
	}
}

// sweepTick closes every auction whose end time has elapsed in one
// conditional bulk update. Idempotent: re-running it matches no rows.
func (e *Engine) sweepTick(ctx context.Context) error {
	expired, err := e.store.ExpireAuctions(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if expired > 0 {
		metrics.AuctionsExpired.Add(float64(expired))
		e.logger.Info("Expired auctions", zap.Int64("count", expired))
	}
	return nil
}
