package settler

import (
	"context"
	"fmt"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
	"github.com/artblox/auction-settler/pkg/store"
)

func (e *Engine) reconcileLoop(ctx context.Context) {
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
			if err := e.reconcileTick(ctx); err != nil {
				e.logger.Error("Reconciliation failed", zap.Error(err))
				metrics.ErrorsTotal.WithLabelValues("reconciler", "tick").Inc()
			}
		}
	}
}

// reconcileTick resolves mint transactions stuck in submitted state, which
// happens when the process crashes between submission and confirmation. The
// destination chain is the source of truth: a successful receipt confirms
// the row, a reverted one sends it down the retry path, and a transaction
// that never landed is released back to pending once the grace period for
// late inclusion has passed.
func (e *Engine) reconcileTick(ctx context.Context) error {
	mints, err := e.store.GetSubmittedMints(ctx)
	if err != nil {
		return err
	}

	if len(mints) > 0 {
		e.logger.Info("Reconciling submitted mints", zap.Int("count", len(mints)))
	}
	for _, mint := range mints {
		if err := e.reconcileMint(ctx, mint); err != nil {
			e.logger.Error("Failed to reconcile mint",
				zap.String("mint_id", mint.ID),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("reconciler", "mint").Inc()
		}
	}

	return e.releaseStaleClaims(ctx)
}

// releaseStaleClaims sends rows stuck in processing down the retry path.
// A claim goes stale when the claiming process dies, or the submission
// record fails, between claim and submit; neither the executor (pending
// only) nor the receipt reconciliation (submitted only) would ever pick
// the row up again.
func (e *Engine) releaseStaleClaims(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-e.config.ReconcileGrace)
	stale, err := e.store.GetStaleProcessingMints(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	e.logger.Warn("Releasing stale processing claims", zap.Int("count", len(stale)))
	for _, mint := range stale {
		e.retryOrFail(ctx, mint, fmt.Errorf("claim expired without submission after %s", e.config.ReconcileGrace))
	}
	return nil
}

func (e *Engine) reconcileMint(ctx context.Context, mint *store.MintTransaction) error {
	if mint.TxHash == nil {
		// Submitted without a hash should be impossible; put the row back
		// in the queue rather than stranding it.
		e.retryOrFail(ctx, mint, fmt.Errorf("submitted mint has no transaction hash"))
		return nil
	}

	receipt, err := e.dest.GetReceipt(ctx, gethcommon.HexToHash(*mint.TxHash))
	if err != nil {
		return err
	}

	if receipt == nil {
		if mint.SubmittedAt != nil && time.Since(*mint.SubmittedAt) > e.config.ReconcileGrace {
			e.retryOrFail(ctx, mint, fmt.Errorf("transaction %s not mined within %s", *mint.TxHash, e.config.ReconcileGrace))
		}
		// Still inside the grace period; leave it for the next pass.
		return nil
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		e.retryOrFail(ctx, mint, fmt.Errorf("transaction %s reverted", *mint.TxHash))
		return nil
	}

	start := time.Now()
	if mint.SubmittedAt != nil {
		start = *mint.SubmittedAt
	}
	e.confirmMint(ctx, mint, receipt, start)
	return nil
}
