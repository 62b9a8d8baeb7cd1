package settler

import (
	"context"
	"fmt"
	"math/big"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
	"github.com/artblox/auction-settler/pkg/store"
)

func (e *Engine) executeLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.ExecuteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.executeTick(ctx); err != nil {
				e.logger.Error("Executor tick failed", zap.Error(err))
				metrics.ErrorsTotal.WithLabelValues("executor", "tick").Inc()
			}
		}
	}
}

// executeTick claims a batch of pending mints and drives each one to a
// destination-chain receipt. The claim is a conditional update; a row
// another instance already claimed is silently dropped from the batch.
func (e *Engine) executeTick(ctx context.Context) error {
	mints, err := e.store.GetPendingMints(ctx, e.config.MintBatchSize, e.config.MaxMintAttempts)
	if err != nil {
		return err
	}

	if pending, err := e.store.CountPendingMints(ctx); err == nil {
		metrics.PendingMints.Set(float64(pending))
	}

	if len(mints) == 0 {
		return nil
	}

	claimed := make([]*store.MintTransaction, 0, len(mints))
	for _, mint := range mints {
		ok, err := e.store.ClaimMint(ctx, mint.ID)
		if err != nil {
			e.logger.Error("Failed to claim mint", zap.String("mint_id", mint.ID), zap.Error(err))
			continue
		}
		if !ok {
			// Another executor instance won the claim.
			continue
		}
		mint.Attempts++
		mint.Status = store.MintStatusProcessing
		claimed = append(claimed, mint)
	}

	if len(claimed) == 0 {
		return nil
	}

	if e.config.MintFunction == "batch" && len(claimed) > 1 {
		e.processMintBatch(ctx, claimed)
		return nil
	}

	for _, mint := range claimed {
		e.processMint(ctx, mint)
	}
	return nil
}

// processMint submits one claimed mint and waits for its receipt
func (e *Engine) processMint(ctx context.Context, mint *store.MintTransaction) {
	start := time.Now()

	nft, err := e.store.GetNFT(ctx, mint.NFTID)
	if err != nil {
		e.retryOrFail(ctx, mint, fmt.Errorf("failed to load nft %s: %w", mint.NFTID, err))
		return
	}

	txHash, err := e.dest.SubmitMint(ctx,
		gethcommon.HexToAddress(mint.Recipient),
		big.NewInt(nft.TokenID),
		e.tokenURI(nft))
	if err != nil {
		e.retryOrFail(ctx, mint, fmt.Errorf("submission failed: %w", err))
		return
	}

	if err := e.store.MarkMintSubmitted(ctx, mint.ID, txHash.Hex()); err != nil {
		// The transaction is on its way; the reconciliation pass will
		// resolve the row from the recorded state.
		e.logger.Error("Failed to record submission",
			zap.String("mint_id", mint.ID),
			zap.String("tx_hash", txHash.Hex()),
			zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("executor", "store").Inc()
		return
	}

	receiptCtx, cancel := context.WithTimeout(ctx, e.config.ReceiptTimeout)
	receipt, err := e.dest.WaitForReceipt(receiptCtx, txHash)
	cancel()
	if err != nil {
		e.retryOrFail(ctx, mint, fmt.Errorf("receipt wait failed: %w", err))
		return
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		e.retryOrFail(ctx, mint, fmt.Errorf("transaction %s reverted", txHash.Hex()))
		return
	}

	e.confirmMint(ctx, mint, receipt, start)
}

// processMintBatch submits the whole claimed batch as one transaction and
// settles every row against the single shared receipt
func (e *Engine) processMintBatch(ctx context.Context, claimed []*store.MintTransaction) {
	start := time.Now()

	recipients := make([]gethcommon.Address, 0, len(claimed))
	tokenIDs := make([]*big.Int, 0, len(claimed))
	tokenURIs := make([]string, 0, len(claimed))
	batch := make([]*store.MintTransaction, 0, len(claimed))

	for _, mint := range claimed {
		nft, err := e.store.GetNFT(ctx, mint.NFTID)
		if err != nil {
			e.retryOrFail(ctx, mint, fmt.Errorf("failed to load nft %s: %w", mint.NFTID, err))
			continue
		}
		recipients = append(recipients, gethcommon.HexToAddress(mint.Recipient))
		tokenIDs = append(tokenIDs, big.NewInt(nft.TokenID))
		tokenURIs = append(tokenURIs, e.tokenURI(nft))
		batch = append(batch, mint)
	}
	if len(batch) == 0 {
		return
	}

	txHash, err := e.dest.SubmitMintBatch(ctx, recipients, tokenIDs, tokenURIs)
	if err != nil {
		for _, mint := range batch {
			e.retryOrFail(ctx, mint, fmt.Errorf("batch submission failed: %w", err))
		}
		return
	}

	for _, mint := range batch {
		if err := e.store.MarkMintSubmitted(ctx, mint.ID, txHash.Hex()); err != nil {
			e.logger.Error("Failed to record submission",
				zap.String("mint_id", mint.ID),
				zap.String("tx_hash", txHash.Hex()),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("executor", "store").Inc()
		}
	}

	receiptCtx, cancel := context.WithTimeout(ctx, e.config.ReceiptTimeout)
	receipt, err := e.dest.WaitForReceipt(receiptCtx, txHash)
	cancel()
	if err != nil {
		for _, mint := range batch {
			e.retryOrFail(ctx, mint, fmt.Errorf("receipt wait failed: %w", err))
		}
		return
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		for _, mint := range batch {
			e.retryOrFail(ctx, mint, fmt.Errorf("transaction %s reverted", txHash.Hex()))
		}
		return
	}

	for _, mint := range batch {
		e.confirmMint(ctx, mint, receipt, start)
	}
}

func (e *Engine) confirmMint(ctx context.Context, mint *store.MintTransaction, receipt *types.Receipt, start time.Time) {
	blockNumber := receipt.BlockNumber.Int64()
	if err := e.store.FinalizeMint(ctx, mint.ID, blockNumber, int64(receipt.GasUsed)); err != nil {
		e.logger.Error("Failed to finalize mint",
			zap.String("mint_id", mint.ID),
			zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("executor", "store").Inc()
		return
	}

	metrics.MintsTotal.WithLabelValues("confirmed").Inc()
	metrics.MintDuration.Observe(time.Since(start).Seconds())
	metrics.GasUsed.Observe(float64(receipt.GasUsed))

	e.logger.Info("Mint confirmed",
		zap.String("mint_id", mint.ID),
		zap.String("nft_id", mint.NFTID),
		zap.Int64("block_number", blockNumber),
		zap.Uint64("gas_used", receipt.GasUsed))
}

// retryOrFail applies the bounded retry policy: back to pending while the
// attempt budget lasts, permanently failed once it is exhausted.
func (e *Engine) retryOrFail(ctx context.Context, mint *store.MintTransaction, cause error) {
	e.logger.Error("Mint attempt failed",
		zap.String("mint_id", mint.ID),
		zap.Int("attempt", mint.Attempts),
		zap.Int("max_attempts", e.config.MaxMintAttempts),
		zap.Error(cause))

	if mint.Attempts >= e.config.MaxMintAttempts {
		if err := e.store.FailMint(ctx, mint.ID, cause.Error()); err != nil {
			e.logger.Error("Failed to mark mint failed", zap.String("mint_id", mint.ID), zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("executor", "store").Inc()
			return
		}
		metrics.MintsTotal.WithLabelValues("failed").Inc()
		e.logger.Error("Mint permanently failed, operator intervention required",
			zap.String("mint_id", mint.ID),
			zap.String("nft_id", mint.NFTID))
		return
	}

	if err := e.store.ReleaseMint(ctx, mint.ID, cause.Error()); err != nil {
		e.logger.Error("Failed to release mint", zap.String("mint_id", mint.ID), zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("executor", "store").Inc()
		return
	}
	metrics.MintsTotal.WithLabelValues("retried").Inc()
}

func (e *Engine) tokenURI(nft *store.NFT) string {
	return e.config.MetadataBaseURI + nft.ContentHash
}
